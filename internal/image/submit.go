package image

import (
	"context"
)

// Artifact describes an image written to disk.
type Artifact struct {
	Path          string
	Size          int
	MimeType      string
	RevisedPrompt string
}

// EditToFile runs one edit and writes the first returned image to outputPath.
// Nothing is written unless the provider returned an image.
func EditToFile(ctx context.Context, p ImageProvider, req EditRequest, outputPath string) (*Artifact, error) {
	result, err := p.Edit(ctx, req)
	if err != nil {
		return nil, err
	}
	return writeArtifact(result, outputPath)
}

// GenerateToFile runs one generation and writes the image to outputPath.
func GenerateToFile(ctx context.Context, p ImageProvider, req GenerateRequest, outputPath string) (*Artifact, error) {
	result, err := p.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	return writeArtifact(result, outputPath)
}

func writeArtifact(result *ImageResult, outputPath string) (*Artifact, error) {
	if outputPath == "" {
		outputPath = DefaultOutputFile
	}
	if err := WriteOutput(outputPath, result.Data); err != nil {
		return nil, err
	}
	return &Artifact{
		Path:          expandPath(outputPath),
		Size:          len(result.Data),
		MimeType:      result.MimeType,
		RevisedPrompt: result.RevisedPrompt,
	}, nil
}

// GenerateToDir runs one generation and saves the image under dir with a
// timestamped name derived from the prompt.
func GenerateToDir(ctx context.Context, p ImageProvider, req GenerateRequest, dir string) (*Artifact, error) {
	result, err := p.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	path, err := SaveImage(result.Data, dir, req.Prompt)
	if err != nil {
		return nil, err
	}
	return &Artifact{
		Path:          path,
		Size:          len(result.Data),
		MimeType:      result.MimeType,
		RevisedPrompt: result.RevisedPrompt,
	}, nil
}
