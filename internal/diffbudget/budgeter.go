// Package diffbudget turns the patches of a pull request into a single
// line-annotated diff whose token cost stays within a budget.
package diffbudget

import (
	"fmt"
	"path"
	"strings"

	"github.com/Tomas-vilte/MateImpact/internal/domain/models"
	"github.com/Tomas-vilte/MateImpact/internal/domain/ports"
	"github.com/sourcegraph/go-diff/diff"
)

// Policy decides what happens to a file that does not fit the remaining budget.
type Policy int

const (
	// PolicyTruncateHunks keeps the leading hunks of the file that still fit.
	PolicyTruncateHunks Policy = iota
	// PolicyOmitFiles drops the file whole.
	PolicyOmitFiles
)

// ParsePolicy maps the config.truncation_policy value to a Policy.
func ParsePolicy(s string) Policy {
	if s == "files" {
		return PolicyOmitFiles
	}
	return PolicyTruncateHunks
}

const (
	deletedHeader = "Deleted files:"
	omittedHeader = "Additional modified files (insufficient token budget to process):"
	fileSeparator = "\n\n"
)

type Budgeter struct {
	Counter ports.TokenCounter
	Policy  Policy
	// Ignore holds path.Match globs tested against the full path and the base name.
	Ignore []string
}

// Result is the budgeted diff and what happened to each file.
type Result struct {
	Diff      string
	Tokens    int
	Included  []string
	Truncated []string
	Omitted   []string
	Deleted   []string
	Ignored   []string
}

// Empty reports whether no diff text was produced.
func (r Result) Empty() bool {
	return r.Diff == ""
}

// Build assembles the annotated diff for files in their original order.
//
// Each block is counted once and the running total is checked against the
// budget. The joined diff is counted again at the end; if a tokenizer charges
// more for the join than for its parts, trailing blocks are dropped until the
// diff fits.
func (b *Budgeter) Build(files []models.ChangedFile, budget int) Result {
	var res Result
	a := &assembly{budget: budget, sepTokens: b.Counter.CountTokens(fileSeparator)}

	for _, f := range files {
		switch {
		case b.ignored(f.Filename):
			res.Ignored = append(res.Ignored, f.Filename)
			continue
		case f.Status == models.FileStatusRemoved:
			res.Deleted = append(res.Deleted, f.Filename)
			continue
		case strings.TrimSpace(f.Patch) == "":
			continue
		}

		hunks := annotateHunks(f.Patch)
		full := fileBlock(f, hunks)
		if tokens := b.Counter.CountTokens(full); a.fits(tokens) {
			a.add(full, f.Filename, tokens)
			res.Included = append(res.Included, f.Filename)
			continue
		}

		if b.Policy == PolicyTruncateHunks {
			if partial, tokens, ok := b.truncate(f, hunks, a); ok {
				a.add(partial, f.Filename, tokens)
				res.Truncated = append(res.Truncated, f.Filename)
				continue
			}
		}
		res.Omitted = append(res.Omitted, f.Filename)
	}

	if len(res.Deleted) > 0 {
		b.addTrailer(a, listing(deletedHeader, res.Deleted))
	}
	if len(res.Omitted) > 0 {
		b.addTrailer(a, listing(omittedHeader, res.Omitted))
	}

	res.Diff = a.join()
	if res.Diff == "" {
		return res
	}
	res.Tokens = b.Counter.CountTokens(res.Diff)
	for res.Tokens > budget && len(a.blocks) > 0 {
		if name := a.pop(); name != "" {
			res.Included = without(res.Included, name)
			res.Truncated = without(res.Truncated, name)
			res.Omitted = append(res.Omitted, name)
		}
		res.Diff = a.join()
		res.Tokens = 0
		if res.Diff != "" {
			res.Tokens = b.Counter.CountTokens(res.Diff)
		}
	}
	return res
}

func (b *Budgeter) addTrailer(a *assembly, trailer string) {
	if tokens := b.Counter.CountTokens(trailer); a.fits(tokens) {
		a.add(trailer, "", tokens)
	}
}

// truncate returns the file block with the longest hunk prefix that fits.
func (b *Budgeter) truncate(f models.ChangedFile, hunks []string, a *assembly) (string, int, bool) {
	for n := len(hunks) - 1; n > 0; n-- {
		candidate := fileBlock(f, hunks[:n])
		if tokens := b.Counter.CountTokens(candidate); a.fits(tokens) {
			return candidate, tokens, true
		}
	}
	return "", 0, false
}

// assembly tracks the blocks accepted so far and their token total.
type assembly struct {
	budget    int
	sepTokens int
	used      int
	blocks    []string
	owners    []string
	costs     []int
}

func (a *assembly) cost(tokens int) int {
	if len(a.blocks) > 0 {
		return tokens + a.sepTokens
	}
	return tokens
}

func (a *assembly) fits(tokens int) bool {
	return a.used+a.cost(tokens) <= a.budget
}

// add appends a block; owner is the file it renders, empty for trailers.
func (a *assembly) add(block, owner string, tokens int) {
	c := a.cost(tokens)
	a.used += c
	a.blocks = append(a.blocks, block)
	a.owners = append(a.owners, owner)
	a.costs = append(a.costs, c)
}

// pop removes the last block and returns its owner.
func (a *assembly) pop() string {
	last := len(a.blocks) - 1
	owner := a.owners[last]
	a.used -= a.costs[last]
	a.blocks, a.owners, a.costs = a.blocks[:last], a.owners[:last], a.costs[:last]
	return owner
}

func (a *assembly) join() string {
	return strings.Join(a.blocks, fileSeparator)
}

func without(names []string, name string) []string {
	out := names[:0:0]
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}

func (b *Budgeter) ignored(name string) bool {
	for _, g := range b.Ignore {
		if ok, _ := path.Match(g, name); ok {
			return true
		}
		if ok, _ := path.Match(g, path.Base(name)); ok {
			return true
		}
	}
	return false
}

func fileBlock(f models.ChangedFile, hunks []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## File: '%s'\n", f.Filename)
	if s := strings.TrimSpace(f.AISummary); s != "" {
		sb.WriteString("\n### AI-generated changes summary:\n")
		sb.WriteString(s)
		sb.WriteString("\n")
	}
	for _, h := range hunks {
		sb.WriteString("\n")
		sb.WriteString(h)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func listing(header string, names []string) string {
	var sb strings.Builder
	sb.WriteString(header)
	for _, n := range names {
		sb.WriteString("\n- ")
		sb.WriteString(n)
	}
	return sb.String()
}

// annotateHunks renders each hunk with numbered new-side lines followed by the
// removed lines, when there are any. A patch go-diff cannot parse is kept as a
// single raw block.
func annotateHunks(patch string) []string {
	hunks, err := diff.ParseHunks([]byte(ensureNewline(patch)))
	if err != nil || len(hunks) == 0 {
		return []string{strings.TrimRight(patch, "\n") + "\n"}
	}

	out := make([]string, 0, len(hunks))
	for _, h := range hunks {
		out = append(out, annotate(h))
	}
	return out
}

func annotate(h *diff.Hunk) string {
	var newSide, oldSide strings.Builder
	removed := false
	line := int(h.NewStartLine)

	for _, l := range strings.Split(strings.TrimSuffix(string(h.Body), "\n"), "\n") {
		if l == "" {
			l = " "
		}
		switch l[0] {
		case '\\':
			continue
		case '+':
			fmt.Fprintf(&newSide, "%d %s\n", line, l)
			line++
		case '-':
			oldSide.WriteString(l + "\n")
			removed = true
		default:
			fmt.Fprintf(&newSide, "%d %s\n", line, l)
			oldSide.WriteString(l + "\n")
			line++
		}
	}

	var sb strings.Builder
	sb.WriteString(hunkHeader(h))
	sb.WriteString("\n__new hunk__\n")
	sb.WriteString(newSide.String())
	if removed {
		sb.WriteString("__old hunk__\n")
		sb.WriteString(oldSide.String())
	}
	return sb.String()
}

func hunkHeader(h *diff.Hunk) string {
	header := fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OrigStartLine, h.OrigLines, h.NewStartLine, h.NewLines)
	if h.Section != "" {
		header += " " + h.Section
	}
	return header
}

func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
