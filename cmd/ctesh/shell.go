package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ergochat/readline"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bawdo/gosbeecte/internal/db"
	"github.com/bawdo/gosbeecte/internal/scenarios"
)

// commandEntry maps a shell prefix to its handler. Prefixes ending in a
// space take arguments; the others must match the whole line.
type commandEntry struct {
	prefix   string
	handler  func(args string) error
	complete func(prefix string) []string
	usage    string
}

// shell runs commands typed at the ctesh prompt against one connection.
type shell struct {
	app      *app
	conn     *db.Conn
	out      io.Writer
	commands []commandEntry
}

func newShell(a *app, conn *db.Conn) *shell {
	s := &shell{app: a, conn: conn, out: a.out}
	s.initCommands()
	return s
}

func (s *shell) initCommands() {
	s.commands = []commandEntry{
		{prefix: "help", handler: func(string) error { s.cmdHelp(); return nil }, usage: "help"},
		{prefix: "list", handler: func(string) error { printScenarios(s.out, scenarios.All()); return nil }, usage: "list"},
		{prefix: "tables", handler: func(string) error { return s.cmdTables() }, usage: "tables"},
		{prefix: "params", handler: func(string) error { return s.cmdParams() }, usage: "params"},
		{prefix: "sql ", handler: s.cmdSQL, complete: scenarioNames, usage: "sql <scenario>"},
		{prefix: "run ", handler: s.cmdRun, complete: scenarioNames, usage: "run <scenario>"},
		{prefix: "query ", handler: s.cmdQuery, usage: "query <raw sql>"},
	}
	// Longest prefix first, so that "sql " never shadows a longer command.
	sort.SliceStable(s.commands, func(i, j int) bool {
		return len(s.commands[i].prefix) > len(s.commands[j].prefix)
	})
}

// Execute runs one line of input.
func (s *shell) Execute(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	lower := strings.ToLower(line)
	for _, cmd := range s.commands {
		if strings.HasSuffix(cmd.prefix, " ") {
			if strings.HasPrefix(lower, cmd.prefix) {
				return cmd.handler(strings.TrimSpace(line[len(cmd.prefix):]))
			}
			if lower == strings.TrimSpace(cmd.prefix) {
				return errors.Errorf("usage: %s", cmd.usage)
			}
		} else if lower == cmd.prefix {
			return cmd.handler("")
		}
	}
	word := strings.Fields(line)[0]
	return errors.Errorf("unknown command: %s (type 'help' for commands)", word)
}

func (s *shell) cmdHelp() {
	usages := make([]string, len(s.commands))
	for i, c := range s.commands {
		usages[i] = c.usage
	}
	sort.Strings(usages)
	fmt.Fprintln(s.out, "Commands:")
	for _, u := range usages {
		fmt.Fprintf(s.out, "  %s\n", u)
	}
	fmt.Fprintln(s.out, "  exit")
}

func (s *shell) cmdTables() error {
	names, err := s.conn.Tables(context.Background())
	if err != nil {
		return err
	}
	for _, n := range names {
		fmt.Fprintf(s.out, "  %s\n", n)
	}
	return nil
}

func (s *shell) cmdParams() error {
	s.app.cfg.params = !s.app.cfg.params
	state := "off"
	if s.app.cfg.params {
		state = "on"
	}
	fmt.Fprintf(s.out, "  bind parameters %s\n", state)
	return nil
}

func (s *shell) cmdSQL(name string) error {
	sql, params, err := s.app.compile(name)
	if err != nil {
		return err
	}
	printSQL(s.out, sql, params)
	return nil
}

func (s *shell) cmdRun(name string) error {
	res, err := s.app.run(context.Background(), s.conn, name)
	if err != nil {
		return err
	}
	printResult(s.out, res)
	return nil
}

func (s *shell) cmdQuery(query string) error {
	res, err := s.conn.Query(context.Background(), query)
	if err != nil {
		return err
	}
	printResult(s.out, res)
	return nil
}

func scenarioNames(prefix string) []string {
	var out []string
	for _, sc := range scenarios.All() {
		if strings.HasPrefix(sc.Name, prefix) {
			out = append(out, sc.Name)
		}
	}
	return out
}

// completer implements readline's AutoCompleter.
type completer struct {
	sh *shell
}

// Do returns the suffixes completing the word under the cursor and the
// length of the prefix they complete.
func (c completer) Do(line []rune, pos int) (newLine [][]rune, length int) {
	text := string(line[:pos])
	lower := strings.ToLower(text)

	var prefix string
	var candidates []string
	matched := false
	for _, cmd := range c.sh.commands {
		if cmd.complete != nil && strings.HasPrefix(lower, cmd.prefix) {
			prefix = strings.TrimLeft(text[len(cmd.prefix):], " ")
			candidates = cmd.complete(prefix)
			matched = true
			break
		}
	}
	if !matched {
		prefix = strings.TrimSpace(text)
		for _, cmd := range c.sh.commands {
			name := strings.TrimSpace(cmd.prefix)
			if strings.HasPrefix(name, prefix) {
				candidates = append(candidates, name)
			}
		}
		sort.Strings(candidates)
	}

	for _, cand := range candidates {
		newLine = append(newLine, []rune(cand[len(prefix):]+" "))
	}
	return newLine, len([]rune(prefix))
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ctesh_history")
}

// runShell reads commands until exit, EOF or a cancelled context.
func runShell(ctx context.Context, s *shell) error {
	rl, err := readline.NewFromConfig(&readline.Config{
		Prompt:          "ctesh> ",
		HistoryFile:     historyPath(),
		HistoryLimit:    500,
		AutoComplete:    completer{sh: s},
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return errors.Wrap(err, "readline init")
	}
	defer func() { _ = rl.Close() }()

	fmt.Fprintf(s.out, "ctesh on %s (%s), type 'help' for commands, 'exit' to quit\n",
		s.conn.Engine(), s.conn.DSN())
	for ctx.Err() == nil {
		line, err := rl.ReadLine()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return errors.Wrap(err, "read line")
		}
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		if lower == "exit" || lower == "quit" {
			break
		}
		if err := s.Execute(line); err != nil {
			s.app.log.Debug("command failed", zap.String("line", line), zap.Error(err))
			printError(s.app.errOut, err)
		}
	}
	fmt.Fprintln(s.out)
	return nil
}
