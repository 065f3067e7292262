package text

import "strings"

// Wrap breaks s into lines no wider than maxWidth using greedy word
// wrapping. Explicit newlines always break. A single word wider than maxWidth
// stays on its own line; callers clip it. maxWidth <= 0 disables wrapping.
// measure returns the advance width of a string.
func Wrap(s string, maxWidth float32, measure func(string) float32) []string {
	raw := strings.Split(s, "\n")
	if maxWidth <= 0 {
		return raw
	}

	spaceWidth := measure(" ")
	var lines []string
	for _, line := range raw {
		words := strings.Fields(line)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		current := words[0]
		currentWidth := measure(current)
		for _, word := range words[1:] {
			wordWidth := measure(word)
			if currentWidth+spaceWidth+wordWidth > maxWidth {
				lines = append(lines, current)
				current = word
				currentWidth = wordWidth
				continue
			}
			current += " " + word
			currentWidth += spaceWidth + wordWidth
		}
		lines = append(lines, current)
	}
	return lines
}

// Widest returns the largest measured width among lines.
func Widest(lines []string, measure func(string) float32) float32 {
	var w float32
	for _, l := range lines {
		if lw := measure(l); lw > w {
			w = lw
		}
	}
	return w
}
