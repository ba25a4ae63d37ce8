package openai

// repairJSON attempts to fix common JSON formatting issues from LLM
// responses before parsing. It specifically handles missing opening
// quotes before keys in JSON objects, e.g. `, genre":` -> `, "genre":`.
func repairJSON(s string) string {
	result := []rune(s)
	fixed := make([]rune, 0, len(result)+100)

	i := 0
	for i < len(result) {
		ch := result[i]

		// After { or , look for unquoted keys
		if ch == '{' || ch == ',' {
			fixed = append(fixed, ch)
			i++

			// Skip whitespace
			for i < len(result) && (result[i] == ' ' || result[i] == '\n' || result[i] == '\t') {
				fixed = append(fixed, result[i])
				i++
			}

			// Check if we have an unquoted key (starts with letter, not with quote)
			if i < len(result) && result[i] != '"' && isLetter(result[i]) {
				keyStart := i
				// Find the end of the key name
				for i < len(result) && (isLetter(result[i]) || result[i] == '_' || result[i] == ' ') {
					i++
				}
				keyEnd := i

				// A following `":` indicates the opening quote was dropped
				if i+1 < len(result) && result[i] == '"' && result[i+1] == ':' {
					fixed = append(fixed, '"')
					for j := keyStart; j < keyEnd; j++ {
						if result[j] != ' ' || (j > keyStart && j < keyEnd-1) {
							fixed = append(fixed, result[j])
						}
					}
					// The closing quote is already present at result[i]
					continue
				}

				// Not an unquoted key, copy what was skipped
				for j := keyStart; j < i; j++ {
					fixed = append(fixed, result[j])
				}
			}
		} else {
			fixed = append(fixed, ch)
			i++
		}
	}

	return string(fixed)
}
