// Package prompt builds the generation request from tip and image pairings and the
// demographic profile.
package prompt

import (
	"fmt"
	"strings"

	"healthpage/internal/core"
	"healthpage/internal/profile"
)

// layoutInstructions describe the structure the generator must produce. The card
// wrapping pass relies on the heading, paragraph, image ordering requested here.
var layoutInstructions = []string{
	"- Add a main heading at the top of the page using <h1> that shows a related title.",
	"- For each health tip:",
	"  - Wrap the tip content in a <div style='margin: 20px 0;'> block.",
	"  - Inside the div, include:",
	"    - A heading using <h2> for the title.",
	"    - A <p> tag for the description.",
	"    - An <img> tag for the image using inline style 'width: 300px'.",
	"- Do not use JavaScript or external CSS frameworks.",
}

// Synthesize builds the page-generation prompt for the given pairings and profile.
// Records appear in pairing order and image paths always use forward slashes.
func Synthesize(pairings []core.Pairing, p core.Profile) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Generate a simple HTML page for a healthcare website titled '%s'.\n", profile.PageTitles.Value(p)))
	sb.WriteString(profile.DesignDirectives.Value(p))
	sb.WriteString("\n")
	for _, line := range layoutInstructions {
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	for _, pair := range pairings {
		sb.WriteString(fmt.Sprintf("Title: %s\n", pair.Title))
		sb.WriteString(fmt.Sprintf("Description: %s\n", pair.Description))
		sb.WriteString(fmt.Sprintf("Image: %s\n\n", strings.ReplaceAll(pair.ImagePath, `\`, "/")))
	}

	return sb.String()
}
