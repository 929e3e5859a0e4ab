// Package parser reads the plain-text card blocks typed into the shell:
//
//	Q: What is the capital of France?
//	A: Paris
//	C: Geography
//	D: easy
//	---
//
// Lines without a prefix continue the current field. "---" ends a block.
package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/conorfennell/flashdeck/internal/domain"
)

// Separator ends a block.
const Separator = "---"

type field int

const (
	seeking field = iota
	readingFront
	readingBack
	readingCategory
	readingDifficulty
)

var prefixes = []struct {
	prefix string
	field  field
}{
	{"Q:", readingFront},
	{"A:", readingBack},
	{"C:", readingCategory},
	{"D:", readingDifficulty},
}

// Block is one parsed card. Fields that were not given are empty.
type Block struct {
	Front      string
	Back       string
	Category   string
	Difficulty string
}

func (b Block) empty() bool {
	return b == Block{}
}

// Draft converts the block for adding a new card.
func (b Block) Draft() domain.Draft {
	return domain.Draft{
		Front:      b.Front,
		Back:       b.Back,
		Category:   b.Category,
		Difficulty: domain.Difficulty(b.Difficulty),
	}
}

// Patch converts the block for editing; only the given fields are set.
func (b Block) Patch() domain.Patch {
	var p domain.Patch
	if b.Front != "" {
		p.Front = &b.Front
	}
	if b.Back != "" {
		p.Back = &b.Back
	}
	if b.Category != "" {
		p.Category = &b.Category
	}
	if b.Difficulty != "" {
		d := domain.Difficulty(b.Difficulty)
		p.Difficulty = &d
	}
	return p
}

// Parse reads every block from r.
func Parse(r io.Reader) ([]Block, error) {
	scanner := bufio.NewScanner(r)
	var blocks []Block
	var current Block
	var lines []string
	state := seeking

	flushField := func() {
		if len(lines) == 0 {
			return
		}
		content := strings.TrimSpace(strings.Join(lines, "\n"))
		switch state {
		case readingFront:
			current.Front = content
		case readingBack:
			current.Back = content
		case readingCategory:
			current.Category = content
		case readingDifficulty:
			current.Difficulty = content
		}
		lines = nil
	}

	finishBlock := func() {
		flushField()
		if !current.empty() {
			blocks = append(blocks, current)
		}
		current = Block{}
		state = seeking
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")

		if strings.TrimSpace(line) == Separator {
			finishBlock()
			continue
		}

		next, rest, ok := matchPrefix(line)
		if !ok {
			if state != seeking {
				lines = append(lines, line)
			}
			continue
		}

		flushField()
		// A second front starts a new card.
		if next == readingFront && current.Front != "" {
			finishBlock()
		}
		state = next
		lines = append(lines, rest)
	}

	finishBlock()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return blocks, nil
}

func matchPrefix(line string) (field, string, bool) {
	for _, p := range prefixes {
		if rest, ok := strings.CutPrefix(line, p.prefix); ok {
			return p.field, strings.TrimPrefix(rest, " "), true
		}
	}
	return seeking, "", false
}
