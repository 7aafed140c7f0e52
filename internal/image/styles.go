package image

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Style is a preset transformation appended to the user's prompt.
type Style struct {
	ID     string
	Name   string
	Prompt string
}

const keepComposition = "Please maintain the original composition, character poses and details. "

var presetStyles = []Style{
	{ID: "qversion", Name: "Chibi figure", Prompt: keepComposition + "Transform into cute chibi figure style, kawaii collectible toy, vinyl figure aesthetic, pastel colors, adorable character design with rounded features"},
	{ID: "toy-package", Name: "Toy packaging", Prompt: keepComposition + "Transform into toy packaging design style, vibrant commercial product presentation, collectible figure in display box, retail packaging aesthetic"},
	{ID: "3d-model", Name: "3D model", Prompt: keepComposition + "Transform into 3D rendered character style, clean modeling, professional studio lighting, digital sculpture, high quality render with smooth surfaces"},
	{ID: "blind-box", Name: "Blind box", Prompt: keepComposition + "Transform into blind box collectible character style, cute mascot design, pastel colors, kawaii aesthetic, small figure with simple features"},
	{ID: "pixar", Name: "Pixar", Prompt: keepComposition + "Transform into Pixar animation style, 3D cartoon character, expressive features, Disney Pixar aesthetic, animated movie style with warm lighting"},
	{ID: "polaroid-clay", Name: "Polaroid clay", Prompt: keepComposition + "Transform into polaroid photo of clay sculpture style, handmade clay figure, soft textures, warm lighting, instant film aesthetic with clay material"},
	{ID: "polaroid-real", Name: "Polaroid realistic", Prompt: keepComposition + "Transform into realistic polaroid photo style, instant film aesthetic, warm vintage tones, retro photography with film grain"},
	{ID: "jewelry-box", Name: "Jewelry box", Prompt: keepComposition + "Transform into elegant portrait in ornate jewelry box frame, luxurious decorative border, precious gems, golden details, vintage elegance"},
	{ID: "q-icon", Name: "Chibi icon", Prompt: keepComposition + "Transform into cute icon style character, simplified kawaii features, app icon aesthetic, clean vector style, chibi design with bold outlines"},
	{ID: "cartoon-sticker", Name: "Cartoon sticker", Prompt: keepComposition + "Transform into cartoon sticker style, bright colors, bold outlines, kawaii design, cute character sticker aesthetic with glossy finish"},
	{ID: "doraemon", Name: "Doraemon", Prompt: keepComposition + "Transform into Doraemon anime style, classic Japanese cartoon aesthetic, simple rounded features, bright blue and white colors, manga style"},
	{ID: "snoopy", Name: "Snoopy", Prompt: keepComposition + "Transform into Snoopy comic style, Peanuts cartoon aesthetic, simple line art, black and white with minimal colors, classic comic strip style"},
	{ID: "japanese-illustration", Name: "Japanese illustration", Prompt: keepComposition + "Transform into Japanese illustration style, soft watercolor textures, delicate line work, pastel colors, kawaii aesthetic, anime-inspired art"},
	{ID: "wool-felt", Name: "Wool felt", Prompt: keepComposition + "Transform into wool felt craft style, handmade felt texture, soft fuzzy materials, needle felting aesthetic, cozy handcraft appearance"},
	{ID: "enamel-pin", Name: "Enamel pin", Prompt: keepComposition + "Transform into enamel pin style, hard enamel finish, bold colors, metallic outlines, collectible pin aesthetic, glossy surface"},
	{ID: "fashion-magazine", Name: "Fashion magazine", Prompt: keepComposition + "Transform into fashion magazine style, high-end editorial photography, professional lighting, glamorous styling, vogue aesthetic, sophisticated composition"},
	{ID: "crystal-ball", Name: "Crystal ball", Prompt: keepComposition + "Transform into crystal ball snow globe style, miniature scene inside glass sphere, magical sparkles, dreamy atmosphere, transparent crystal effect"},
}

// Styles returns the preset styles in display order.
func Styles() []Style {
	out := make([]Style, len(presetStyles))
	copy(out, presetStyles)
	return out
}

// styleSource implements fuzzy.Source over style IDs
type styleSource []Style

func (s styleSource) String(i int) string { return s[i].ID }
func (s styleSource) Len() int            { return len(s) }

// LookupStyle finds a style by ID (case-insensitive). On a miss the error
// names the closest IDs.
func LookupStyle(id string) (Style, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, s := range presetStyles {
		if s.ID == id {
			return s, nil
		}
	}

	matches := fuzzy.FindFrom(id, styleSource(presetStyles))
	if len(matches) == 0 {
		return Style{}, fmt.Errorf("unknown style %q (run 'imgedit styles' for the list)", id)
	}
	var suggestions []string
	for i, m := range matches {
		if i == 3 {
			break
		}
		suggestions = append(suggestions, presetStyles[m.Index].ID)
	}
	return Style{}, fmt.Errorf("unknown style %q, did you mean: %s", id, strings.Join(suggestions, ", "))
}

// ApplyStyle combines a style with the user's prompt. An empty prompt yields
// the style prompt alone.
func ApplyStyle(style Style, prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if style.Prompt == "" {
		return prompt
	}
	if prompt == "" {
		return style.Prompt
	}
	return style.Prompt + ". " + prompt
}
