// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chat runs the interactive search conversation in a terminal.
// Plain input lines are queries; lines starting with "/" are commands.
package chat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/researchflow/internal/favorites"
	"github.com/pdiddy/researchflow/internal/session"
	"github.com/pdiddy/researchflow/internal/transcript"
	"github.com/pdiddy/researchflow/pkg/types"
)

const helpText = `Type a question to search for articles. Commands:
  /more                 load the next page of the last search
  /save <n>             save article n of the last response to favorites
  /favorites            list saved articles
  /filters              show the current filters
  /sort <mode>          default, relevance (citations), or recency
  /years <from> <to>    restrict publication years
  /open on|off          only open-access articles
  /history              reprint the conversation
  /write <file>         save the conversation transcript as YAML
  /help                 show this help
  /quit                 leave`

const greeting = "What kind of scientific article do you want to find today?"

// REPL wires a session controller to a line-oriented terminal.
type REPL struct {
	Controller *session.Controller
	Favorites  favorites.Repository
	Transcript *transcript.File
	In         io.Reader
	Out        io.Writer
	Now        func() time.Time

	// rendered tracks how many articles of each APITurn index were printed,
	// so a merged page prints only its new articles.
	rendered map[int]int
}

// Run reads lines until EOF, /quit, or ctx is done.
func (r *REPL) Run(ctx context.Context) error {
	if r.Now == nil {
		r.Now = time.Now
	}
	if r.Transcript == nil {
		r.Transcript = transcript.New(r.Now())
	}
	if r.rendered == nil {
		r.rendered = make(map[int]int)
		r.Controller.Subscribe(r.render)
	}

	if turns := r.Controller.Turns(); len(turns) == 0 {
		fmt.Fprintln(r.Out, greeting)
	} else {
		r.history()
	}
	fmt.Fprintln(r.Out, `Type /help for commands.`)

	scanner := bufio.NewScanner(r.In)
	for {
		fmt.Fprint(r.Out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(r.Out)
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "/") {
			r.submit(ctx, line)
			continue
		}

		quit, err := r.command(ctx, line)
		if err != nil {
			fmt.Fprintf(r.Out, "error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

func (r *REPL) submit(ctx context.Context, line string) {
	if line == "" {
		return
	}
	if err := r.Controller.SubmitQuery(ctx, line); err != nil {
		fmt.Fprintf(r.Out, "error: %v\n", err)
		return
	}
	r.hint()
}

func (r *REPL) command(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]

	switch name {
	case "/quit", "/exit":
		return true, nil
	case "/help":
		fmt.Fprintln(r.Out, helpText)
	case "/more":
		if err := r.Controller.LoadMore(ctx); err != nil {
			return false, err
		}
		r.hint()
	case "/save":
		return false, r.save(ctx, args)
	case "/favorites":
		return false, r.listFavorites(ctx)
	case "/filters":
		r.showFilters()
	case "/sort":
		return false, r.setSort(args)
	case "/years":
		return false, r.setYears(args)
	case "/open":
		return false, r.setOpenAccess(args)
	case "/history":
		r.history()
	case "/write":
		return false, r.write(args)
	default:
		return false, fmt.Errorf("unknown command %s (try /help)", name)
	}
	return false, nil
}

// render is the controller listener. Appended turns print in full; a
// replaced APITurn prints its new message and only the articles not yet
// shown.
func (r *REPL) render(t session.Turn, idx int) {
	api, ok := t.(session.APITurn)
	if !ok {
		return // the user's own line is already on screen
	}
	shown, seen := r.rendered[idx]
	if !seen {
		session.FormatTurn(r.Out, api)
		r.rendered[idx] = len(api.Articles)
		return
	}
	fmt.Fprintf(r.Out, "\nresearchflow> %s\n", api.Message)
	for i := shown; i < len(api.Articles); i++ {
		session.FormatArticle(r.Out, i+1, api.Articles[i])
	}
	r.rendered[idx] = len(api.Articles)
}

func (r *REPL) hint() {
	if r.Controller.CanLoadMore() {
		fmt.Fprintln(r.Out, "\nMore results available: /more")
	}
}

func (r *REPL) history() {
	for i, t := range r.Controller.Turns() {
		session.FormatTurn(r.Out, t)
		if api, ok := t.(session.APITurn); ok {
			r.rendered[i] = len(api.Articles)
		}
	}
	r.hint()
}

func (r *REPL) save(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: /save <n>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("article number %q: %w", args[0], err)
	}
	last, ok := r.Controller.LastResponse()
	if !ok || len(last.Articles) == 0 {
		return errors.New("no articles to save")
	}
	if n < 1 || n > len(last.Articles) {
		return fmt.Errorf("article number must be between 1 and %d", len(last.Articles))
	}

	article := last.Articles[n-1]
	outcome, err := r.Controller.SaveArticle(ctx, article)
	if err != nil {
		return err
	}
	switch outcome {
	case session.AlreadySaved:
		fmt.Fprintln(r.Out, "This article is already in your favorites.")
	default:
		fmt.Fprintf(r.Out, "Saved %q to your favorites.\n", article.Title)
	}
	return nil
}

func (r *REPL) listFavorites(ctx context.Context) error {
	if r.Favorites == nil {
		return errors.New("no favorites repository configured")
	}
	list, err := r.Favorites.List(ctx)
	if err != nil {
		return err
	}
	session.FormatTable(r.Out, list)
	return nil
}

func (r *REPL) showFilters() {
	f := r.Controller.Filters()
	open := "off"
	if f.OpenAccess {
		open = "on"
	}
	fmt.Fprintf(r.Out, "sort: %s | years: %d-%d | open access: %s\n", f.SortBy, f.YearFrom, f.YearTo, open)
}

func (r *REPL) setSort(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: /sort default|relevance|recency")
	}
	mode, err := types.ParseSortMode(args[0])
	if err != nil {
		return err
	}
	f := r.Controller.Filters()
	f.SortBy = mode
	return r.apply(f)
}

func (r *REPL) setYears(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: /years <from> <to>")
	}
	from, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("year %q: %w", args[0], err)
	}
	to, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("year %q: %w", args[1], err)
	}
	f := r.Controller.Filters()
	f.YearFrom, f.YearTo = from, to
	return r.apply(f)
}

func (r *REPL) setOpenAccess(args []string) error {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		return errors.New("usage: /open on|off")
	}
	f := r.Controller.Filters()
	f.OpenAccess = args[0] == "on"
	return r.apply(f)
}

func (r *REPL) apply(f session.FilterState) error {
	if err := r.Controller.SetFilters(f); err != nil {
		return err
	}
	r.showFilters()
	return nil
}

func (r *REPL) write(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: /write <file>")
	}
	r.Transcript.Capture(r.Controller.Snapshot(), r.Now())
	if err := transcript.Write(args[0], r.Transcript); err != nil {
		return err
	}
	fmt.Fprintf(r.Out, "Transcript written to %s\n", args[0])
	return nil
}
