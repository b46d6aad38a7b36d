package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/jusunglee/manchuscript/internal/db"
	"github.com/jusunglee/manchuscript/internal/db/sqlite"
	"github.com/jusunglee/manchuscript/manchu"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/samber/lo"
)

func main() {
	if err := mainE(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func mainE() error {
	_ = godotenv.Load()

	fs := ff.NewFlagSet("manchu")

	var (
		showAlphabet = fs.BoolLong("alphabet", "print the alphabet table and exit")
		historyPath  = fs.StringLong("history", "", "SQLite file to record conversions in (disabled when empty)")
	)

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("MANCHU")); err != nil {
		fmt.Printf("%s\n", ffhelp.Flags(fs))
		return fmt.Errorf("parsing flags: %w", err)
	}

	if *showAlphabet {
		printAlphabet(os.Stdout)
		return nil
	}

	ctx := context.Background()

	var repo db.Repository
	if *historyPath != "" {
		var err error
		repo, err = sqlite.New(ctx, *historyPath)
		if err != nil {
			return fmt.Errorf("opening history database: %w", err)
		}
		defer repo.Close()
	}

	if args := fs.GetArgs(); len(args) > 0 {
		return convert(ctx, repo, strings.Join(args, " "))
	}

	// No arguments: convert stdin line by line.
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if err := convert(ctx, repo, scanner.Text()); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func convert(ctx context.Context, repo db.Repository, text string) error {
	if strings.TrimSpace(text) == "" {
		fmt.Println()
		return nil
	}

	script, err := manchu.ConvertText(text)
	if err != nil {
		var inputErr *manchu.UnrecognizedInputError
		if errors.As(err, &inputErr) {
			return fmt.Errorf("unrecognized input %q at byte %d of word %q",
				inputErr.Substring, inputErr.Offset, inputErr.Word)
		}
		return err
	}
	fmt.Println(script)

	if repo == nil {
		return nil
	}
	for _, word := range strings.Fields(text) {
		s, _ := manchu.ConvertWord(word)
		if _, err := repo.UpsertConversion(ctx, db.UpsertConversionParams{
			Romanized: strings.ToLower(word),
			Script:    s,
			Source:    "cli",
		}); err != nil {
			return fmt.Errorf("recording conversion: %w", err)
		}
	}
	return nil
}

func printAlphabet(w *os.File) {
	a := manchu.Standard()

	unitsByLetter := lo.GroupBy(a.Units(), func(u manchu.UnitMapping) manchu.LetterID {
		return u.Letter
	})

	letters := a.Letters()
	sort.Slice(letters, func(i, j int) bool { return letters[i].ID < letters[j].ID })

	for _, l := range letters {
		units := lo.Map(unitsByLetter[l.ID], func(u manchu.UnitMapping, _ int) string {
			return u.Text
		})
		sort.Strings(units)
		fmt.Fprintf(w, "%-4s %s  %s\n", l.ID, l.Form(manchu.Isolate), strings.Join(units, ", "))
	}
}
