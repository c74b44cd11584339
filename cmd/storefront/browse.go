package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	kingpin "github.com/alecthomas/kingpin/v2"

	"storefront/internal/pkg/client/storefront"
	"storefront/internal/pkg/listquery"
	"storefront/internal/pkg/render"
)

const browseHelp = "Type to search. Commands: :next :prev :page N :size N :filter key=value :unfilter key :refresh :quit"

type commandKind int

const (
	cmdSearch commandKind = iota
	cmdNext
	cmdPrev
	cmdPage
	cmdSize
	cmdFilter
	cmdUnfilter
	cmdRefresh
	cmdQuit
)

// command is one parsed input line of the browse prompt.
type command struct {
	kind  commandKind
	n     int
	key   string
	value string
	// text is the search text for cmdSearch.
	text string
}

// parseCommand turns a prompt line into a command. Lines not starting with
// ':' are search text, an empty line clears the search.
func parseCommand(line string) (command, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, ":") {
		return command{kind: cmdSearch, text: line}, nil
	}
	name, arg, _ := strings.Cut(line[1:], " ")
	arg = strings.TrimSpace(arg)

	number := func(kind commandKind) (command, error) {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			return command{}, fmt.Errorf(":%s needs a positive number, got %q", name, arg)
		}
		return command{kind: kind, n: n}, nil
	}

	switch name {
	case "next", "n":
		return command{kind: cmdNext}, nil
	case "prev", "p":
		return command{kind: cmdPrev}, nil
	case "page":
		return number(cmdPage)
	case "size":
		return number(cmdSize)
	case "filter":
		k, v, ok := strings.Cut(arg, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return command{}, fmt.Errorf(":filter needs key=value, got %q", arg)
		}
		return command{kind: cmdFilter, key: k, value: strings.TrimSpace(v)}, nil
	case "unfilter":
		if arg == "" {
			return command{}, fmt.Errorf(":unfilter needs a key")
		}
		return command{kind: cmdUnfilter, key: arg}, nil
	case "refresh", "r":
		return command{kind: cmdRefresh}, nil
	case "quit", "q":
		return command{kind: cmdQuit}, nil
	default:
		return command{}, fmt.Errorf("unknown command %q", ":"+name)
	}
}

func registerBrowseCommand(app *kingpin.Application, cmds map[string]runFunc) {
	browseCmd := app.Command("browse", "Browse a list interactively, reading commands from stdin.")
	resource := browseCmd.Arg("resource", "orders, products or inventory").Required().Enum(
		storefront.ResourceOrders, storefront.ResourceProducts, storefront.ResourceInventory)
	flags := addListFlags(browseCmd)
	cmds[browseCmd.FullCommand()] = func(ctx context.Context, e *env) error {
		snap, err := flags.snapshot(e, *resource, nil)
		if err != nil {
			return err
		}
		switch *resource {
		case storefront.ResourceOrders:
			return browse(ctx, e, ordersExecutor(e), snap, render.Orders)
		case storefront.ResourceProducts:
			return browse(ctx, e, productsExecutor(e), snap, render.Products)
		default:
			return browse(ctx, e, inventoryExecutor(e), snap, render.Inventory)
		}
	}
}

// browse renders every state of a controller while applying commands read
// line by line from e.in. Search text is debounced; any other command first
// applies pending search text and waits for the list to settle. It returns
// at :quit or end of input, once the last query has settled.
func browse[T any](ctx context.Context, e *env, exec *listquery.Executor[T], snap listquery.Snapshot, table render.Table[T]) error {
	if err := e.printer.Message(render.ToneMuted, browseHelp); err != nil {
		return err
	}

	ctrl := listquery.NewController(exec, snap, controllerOptions(e)...)
	defer ctrl.Close()

	var (
		mu    sync.Mutex
		shown listquery.QueryState[T]
	)
	changed := make(chan struct{}, 1)
	ctrl.Subscribe(func(st listquery.QueryState[T]) {
		if err := table.Render(e.printer, st); err != nil {
			e.logger.Warn("render failed", "err", err)
		}
		mu.Lock()
		shown = st
		mu.Unlock()
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	ctrl.Start()

	done := make(chan struct{})
	defer close(done)
	lines := readLines(ctx, done, e.in, e.logger)

	settle := func() error {
		ctrl.FlushSearch()
		return waitSettled(ctx, ctrl, changed, func() listquery.QueryState[T] {
			mu.Lock()
			defer mu.Unlock()
			return shown
		})
	}

	for {
		var line string
		select {
		case <-ctx.Done():
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				return settle()
			}
			line = l
		}

		cmd, err := parseCommand(line)
		if err != nil {
			e.logger.Warn("ignoring input", "err", err)
			continue
		}
		if cmd.kind == cmdSearch {
			ctrl.SetSearch(cmd.text)
			continue
		}
		if err := settle(); err != nil {
			return err
		}

		switch cmd.kind {
		case cmdNext:
			if !ctrl.Next() {
				e.logger.Info("already on the last page")
			}
		case cmdPrev:
			if !ctrl.Previous() {
				e.logger.Info("already on the first page")
			}
		case cmdPage:
			err = ctrl.SetPage(cmd.n)
		case cmdSize:
			err = ctrl.SetPageSize(cmd.n)
		case cmdFilter:
			err = ctrl.SetFilter(cmd.key, cmd.value)
		case cmdUnfilter:
			ctrl.ClearFilter(cmd.key)
		case cmdRefresh:
			ctrl.Refresh()
		case cmdQuit:
			return nil
		}
		if err != nil {
			e.logger.Warn("command rejected", "err", err)
		}
	}
}

// readLines sends each line of r on the returned channel, which is closed at
// end of input or once ctx or done is finished.
func readLines(ctx context.Context, done <-chan struct{}, r io.Reader, logger *slog.Logger) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			default:
			}
			select {
			case lines <- sc.Text():
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
		if err := sc.Err(); err != nil {
			logger.Warn("read input", "err", err)
		}
	}()
	return lines
}

// waitSettled blocks until the last rendered state is a success or error for
// the parameters the controller currently requests.
func waitSettled[T any](ctx context.Context, ctrl *listquery.Controller[T], changed <-chan struct{}, shown func() listquery.QueryState[T]) error {
	for {
		st := shown()
		settled := st.Status == listquery.StatusSuccess || st.Status == listquery.StatusError
		if settled && !ctrl.SearchPending() && st.Snapshot.Key() == ctrl.Params().Key() {
			return nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
