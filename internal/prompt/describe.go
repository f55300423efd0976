package prompt

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnexpectedResponse means the text collaborator answered with something other than text.
var ErrUnexpectedResponse = errors.New("unexpected response shape from text generator")

// Describer turns a word into a single image prompt describing a 2x2 grid of scenes.
type Describer interface {
	Describe(ctx context.Context, word string) (string, error)
}

const instructionTemplate = `I want you to create a 4-panel representation of the word "%[1]s" by describing four different scenes that would help someone understand the meaning through visual examples.

Similar to how I might teach the word 'marngle' (meaning steam or hot water vapor) by showing:
1. A lake in the morning with misty vapour wafting off of it.
2. A tea kettle blowing a hazy vapor from the spout.
3. A hot shower making mirrors foggy looking.
4. Freshly cooked dumplings and vegetables with steaming on a plate.

Please create four detailed scene descriptions for "%[1]s" that would help viewers understand its meaning through visual context. Each scene should show the concept in a different setting, allowing the viewer to identify the common element.

Keep every scene family-friendly. Do not ask for large blocks of text, captions or signage in the image, and never show the word "%[1]s" itself as written text.

Format your response as a single detailed image prompt that describes a 2x2 grid layout with four panels, each showing one of your scenes. Make the descriptions vivid and specific enough for image generation.`

// Instruction is the single-turn message sent to the text collaborator for word.
func Instruction(word string) string {
	return fmt.Sprintf(instructionTemplate, word)
}
