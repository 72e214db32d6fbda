package services

import (
	"path"
	"sort"
	"strings"

	"github.com/Tomas-vilte/MateImpact/internal/domain/models"
)

var languageExtensions = map[string]string{
	".go":    "Go",
	".py":    "Python",
	".js":    "JavaScript",
	".jsx":   "JavaScript",
	".mjs":   "JavaScript",
	".ts":    "TypeScript",
	".tsx":   "TypeScript",
	".java":  "Java",
	".kt":    "Kotlin",
	".kts":   "Kotlin",
	".scala": "Scala",
	".rb":    "Ruby",
	".php":   "PHP",
	".cs":    "C#",
	".c":     "C",
	".h":     "C",
	".cc":    "C++",
	".cpp":   "C++",
	".hpp":   "C++",
	".rs":    "Rust",
	".swift": "Swift",
	".m":     "Objective-C",
	".sh":    "Shell",
	".bash":  "Shell",
	".sql":   "SQL",
	".tf":    "HCL",
	".hcl":   "HCL",
	".yaml":  "YAML",
	".yml":   "YAML",
	".dart":  "Dart",
	".ex":    "Elixir",
	".exs":   "Elixir",
	".vue":   "Vue",
}

// MainLanguage picks the language with the most changed files. Ties go to the
// language with more bytes in the repository. With no recognizable file the
// largest repository language wins.
func MainLanguage(stats map[string]int, files []models.ChangedFile) string {
	counts := make(map[string]int)
	for _, f := range files {
		if lang, ok := languageExtensions[strings.ToLower(path.Ext(f.Filename))]; ok {
			counts[lang]++
		}
	}

	if len(counts) == 0 {
		return largest(stats)
	}

	langs := make([]string, 0, len(counts))
	for l := range counts {
		langs = append(langs, l)
	}
	sort.Slice(langs, func(i, j int) bool {
		a, b := langs[i], langs[j]
		if counts[a] != counts[b] {
			return counts[a] > counts[b]
		}
		if stats[a] != stats[b] {
			return stats[a] > stats[b]
		}
		return a < b
	})
	return langs[0]
}

func largest(stats map[string]int) string {
	best, bestBytes := "", -1
	for lang, n := range stats {
		if n > bestBytes || (n == bestBytes && lang < best) {
			best, bestBytes = lang, n
		}
	}
	return best
}
