// Package shell is the interactive line-based front end. It renders state
// from the card store and session controller and turns typed commands into
// their operations.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/conorfennell/flashdeck/internal/cardstore"
	"github.com/conorfennell/flashdeck/internal/domain"
	"github.com/conorfennell/flashdeck/internal/notify"
	"github.com/conorfennell/flashdeck/internal/parser"
	"github.com/conorfennell/flashdeck/internal/session"
	"github.com/conorfennell/flashdeck/internal/terminal"
)

var errAmbiguousID = errors.New("id prefix matches more than one card")

// Shell reads commands from in and writes to out.
type Shell struct {
	store    *cardstore.Store
	ctrl     *session.Controller
	notifier notify.Notifier
	render   *terminal.Renderer
	in       *bufio.Scanner
	out      io.Writer
	advanced chan session.Progress
}

// New wires a shell to the store and controller.
func New(
	store *cardstore.Store,
	ctrl *session.Controller,
	in io.Reader,
	out io.Writer,
	notifier notify.Notifier,
	render *terminal.Renderer,
) *Shell {
	s := &Shell{
		store:    store,
		ctrl:     ctrl,
		notifier: notifier,
		render:   render,
		in:       bufio.NewScanner(in),
		out:      out,
		advanced: make(chan session.Progress, 1),
	}
	ctrl.OnAdvance(func(p session.Progress) {
		select {
		case s.advanced <- p:
		default:
		}
	})
	return s
}

// Run processes commands until quit, end of input or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "flashdeck: type 'help' for commands")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(s.out, "flashdeck> ")
		line, ok := s.readLine()
		if !ok {
			fmt.Fprintln(s.out)
			return s.in.Err()
		}

		cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
		arg = strings.TrimSpace(arg)

		switch cmd {
		case "":
		case "help", "?":
			s.help()
		case "list", "ls":
			category := arg
			if category == "" {
				category = s.store.SelectedCategory()
			}
			fmt.Fprintln(s.out, s.render.CardList(s.store.Filtered(category)))
		case "categories", "cats":
			fmt.Fprintln(s.out, s.render.Categories(s.store.Categories(), s.store.Count, s.store.SelectedCategory()))
		case "use":
			s.store.SetCategory(arg)
			selected := s.store.SelectedCategory()
			s.notifier.Success(fmt.Sprintf("Selected %s (%s)", selected, plural(s.store.Count(selected), "card")))
		case "add":
			s.add()
		case "edit":
			s.edit(arg)
		case "rm", "delete":
			s.remove(arg)
		case "study":
			if err := s.Study(ctx, arg); err != nil {
				return err
			}
		case "stats":
			fmt.Fprintln(s.out, s.render.Stats(s.store.Stats()))
		case "quit", "exit", "q":
			return nil
		default:
			s.notifier.Error("unknown command: " + cmd)
		}
	}
}

// Study runs one session over category (or the selected category when empty)
// until it completes, the user ends it or input runs out.
func (s *Shell) Study(ctx context.Context, category string) error {
	label := category
	if label == "" {
		label = s.store.SelectedCategory()
	}
	n := s.store.Count(label)
	if n == 0 {
		s.notifier.Error("No flashcards available for study. Please add some cards first!")
		return nil
	}
	s.drainAdvanced()
	if err := s.ctrl.Start(category); err != nil {
		s.notifier.Error(message(err))
		return nil
	}
	s.notifier.Success(fmt.Sprintf("Starting study session with %s!", plural(n, "card")))

	for {
		card, ok := s.ctrl.Current()
		if !ok {
			break
		}
		fmt.Fprintln(s.out, s.render.Front(card, s.ctrl.Progress()))

		input, ok := s.prompt("[enter] reveal answer  [q] end session", "", "q")
		if !ok || input == "q" {
			return s.endEarly(ok)
		}
		fmt.Fprintln(s.out, s.render.Back(card))

		input, ok = s.prompt("Did you get it right? [y/n]  [q] end session", "y", "n", "q")
		if !ok || input == "q" {
			return s.endEarly(ok)
		}
		correct := input == "y"
		if err := s.ctrl.Answer(correct); err != nil {
			s.notifier.Error(message(err))
			continue
		}
		if correct {
			s.notifier.Success("Correct! Well done!")
		} else {
			s.notifier.Error("Incorrect, but keep practicing!")
		}

		select {
		case <-s.advanced:
		case <-ctx.Done():
			_ = s.ctrl.End()
			return ctx.Err()
		}
	}

	if sess, ok := s.ctrl.Session(); ok {
		fmt.Fprintln(s.out, s.render.Summary(sess, s.ctrl.Progress().Elapsed))
	}
	if err := s.ctrl.End(); err != nil {
		return err
	}
	s.notifier.Success("Study session completed!")
	return nil
}

func (s *Shell) endEarly(haveInput bool) error {
	if err := s.ctrl.End(); err != nil {
		return err
	}
	if haveInput {
		s.notifier.Success("Study session ended")
	}
	return nil
}

func (s *Shell) add() {
	blocks, ok := s.readBlocks()
	if !ok {
		return
	}
	for _, b := range blocks {
		if _, err := s.store.Add(b.Draft()); err != nil {
			s.notifier.Error(message(err))
			continue
		}
		s.notifier.Success("Flashcard added successfully!")
	}
}

func (s *Shell) edit(prefix string) {
	card, err := s.resolve(prefix)
	if err != nil {
		s.notifier.Error(message(err))
		return
	}
	fmt.Fprintln(s.out, s.render.CardList([]domain.Flashcard{card}))

	blocks, ok := s.readBlocks()
	if !ok {
		return
	}
	if len(blocks) != 1 || blocks[0].Patch().Empty() {
		s.notifier.Error("Enter exactly one block with the fields to change")
		return
	}
	if _, err := s.store.Update(card.ID, blocks[0].Patch()); err != nil {
		s.notifier.Error(message(err))
		return
	}
	s.notifier.Success("Flashcard updated successfully!")
}

func (s *Shell) remove(prefix string) {
	card, err := s.resolve(prefix)
	if err != nil {
		s.notifier.Error(message(err))
		return
	}
	s.store.Delete(card.ID)
	s.notifier.Success("Flashcard deleted successfully!")
}

// resolve finds the single card whose id starts with prefix.
func (s *Shell) resolve(prefix string) (domain.Flashcard, error) {
	if prefix == "" {
		return domain.Flashcard{}, fmt.Errorf("missing card id: %w", domain.ErrNotFound)
	}
	var matches []domain.Flashcard
	for _, c := range s.store.All() {
		if strings.HasPrefix(c.ID, prefix) {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 0:
		return domain.Flashcard{}, fmt.Errorf("%s: %w", prefix, domain.ErrNotFound)
	case 1:
		return matches[0], nil
	}
	return domain.Flashcard{}, fmt.Errorf("%s: %w", prefix, errAmbiguousID)
}

// readBlocks collects card block lines up to a separator or end of input.
func (s *Shell) readBlocks() ([]parser.Block, bool) {
	fmt.Fprintln(s.out, "Enter Q:, A:, C: and D: lines, then "+parser.Separator)
	var b strings.Builder
	for {
		line, ok := s.readLine()
		if !ok || strings.TrimSpace(line) == parser.Separator {
			break
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	blocks, err := parser.Parse(strings.NewReader(b.String()))
	if err != nil {
		s.notifier.Error(err.Error())
		return nil, false
	}
	if len(blocks) == 0 {
		s.notifier.Error("No card entered")
		return nil, false
	}
	return blocks, true
}

// prompt repeats until the input is one of choices, lower-cased.
func (s *Shell) prompt(text string, choices ...string) (string, bool) {
	for {
		fmt.Fprintln(s.out, text)
		line, ok := s.readLine()
		if !ok {
			return "", false
		}
		line = strings.ToLower(strings.TrimSpace(line))
		if slices.Contains(choices, line) {
			return line, true
		}
	}
}

func (s *Shell) readLine() (string, bool) {
	if !s.in.Scan() {
		return "", false
	}
	return s.in.Text(), true
}

func (s *Shell) drainAdvanced() {
	for {
		select {
		case <-s.advanced:
		default:
			return
		}
	}
}

func (s *Shell) help() {
	fmt.Fprint(s.out, `Commands:
  list [category]    List cards (defaults to the selected category)
  categories         List categories with card counts
  use <category>     Select a category ("All" for every card)
  add                Add cards from Q:/A:/C:/D: lines ended by ---
  edit <id>          Change the given fields of a card
  rm <id>            Delete a card
  study [category]   Start a study session
  stats              Show deck statistics
  quit               Leave
Card ids may be shortened to any unique prefix.
`)
}

// message turns an error into the text shown to the user.
func message(err error) string {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		if slices.Contains(verr.Fields, "front") || slices.Contains(verr.Fields, "back") {
			return "Please fill in both front and back of the card"
		}
		if slices.Contains(verr.Fields, "category") {
			return "Please specify a category other than " + domain.AllCategories
		}
		return "Difficulty must be easy, medium or hard"
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "No card matches that id"
	case errors.Is(err, errAmbiguousID):
		return "More than one card matches that id; type more of it"
	case errors.Is(err, domain.ErrEmptySelection):
		return "No flashcards available for study. Please add some cards first!"
	}
	return err.Error()
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
