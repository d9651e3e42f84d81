// main.go -- mcdbmake: build an mcdb constant database from text or CSV input
//
// Author: Sudhi Herle <sudhi@herle.net>
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

// mcdbmake constructs an on-disk mcdb file from one or more input files
// (or stdin). Supported input formats:
//   - whitespace delimited text: first field is key, rest of the line is value
//   - Comma Separated text (CSV): fields selected by --keyfield/--valfield

package main

import (
	"fmt"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/haguenau/mcdb"
)

var (
	tag        uint8
	comma      string
	comment    string
	keyField   int
	valField   int
	configFile string
)

func main() {
	usage := fmt.Sprintf("%s [options] OUTPUT [INPUT ...]", os.Args[0])

	// First pass: pull out --config alone, tolerating the flags
	// registered below that haven't been declared on this set yet.
	pre := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	pre.ParseErrorsWhitelist.UnknownFlags = true
	pre.StringVar(&configFile, "config", "", "")
	_ = pre.Parse(os.Args[1:])

	defaults, err := loadBuildConfig(configFile)
	if err != nil {
		die("%s", err)
	}
	if defaults.Comma == "" {
		defaults.Comma = ","
	}
	if defaults.Comment == "" {
		defaults.Comment = "#"
	}
	if defaults.ValField == 0 {
		defaults.ValField = 1
	}

	flag.StringVar(&configFile, "config", configFile, "JSONC defaults file (overridden by explicit flags)")
	flag.Uint8VarP(&tag, "tag", "t", defaults.Tag, "Namespace tag folded into the hash (0 = untagged)")
	flag.StringVar(&comma, "comma", defaults.Comma, "CSV field delimiter")
	flag.StringVar(&comment, "comment", defaults.Comment, "CSV comment-line prefix character")
	flag.IntVar(&keyField, "keyfield", defaults.KeyField, "CSV field index holding the key")
	flag.IntVar(&valField, "valfield", defaults.ValField, "CSV field index holding the value")
	flag.Usage = func() {
		fmt.Printf("mcdbmake - build a constant DB from txt or CSV files\nUsage: %s\n", usage)
		flag.PrintDefaults()
	}

	flag.Parse()
	args := flag.Args()

	if len(args) < 1 {
		die("no output file name!\nUsage: %s\n", usage)
	}

	out := args[0]
	args = args[1:]

	b, err := mcdb.NewBuilder(out)
	if err != nil {
		die("can't create %s: %s", out, err)
	}
	b.WithTag(tag)

	var commaRune rune = ','
	if len(comma) > 0 {
		commaRune = []rune(comma)[0]
	}
	var commentRune rune
	if len(comment) > 0 {
		commentRune = []rune(comment)[0]
	}

	var n uint64
	if len(args) > 0 {
		for _, f := range args {
			switch {
			case strings.HasSuffix(f, ".txt"):
				n, err = b.AddTextFile(f, " \t")

			case strings.HasSuffix(f, ".csv"):
				n, err = b.AddCSVFile(f, commaRune, commentRune, keyField, valField)

			default:
				warn("don't know how to add %s", f)
				continue
			}

			if err != nil {
				b.Abort()
				die("can't add %s: %s", f, err)
			}

			fmt.Printf("+ %s: %d records\n", f, n)
		}
	} else {
		n, err = b.AddTextStream(os.Stdin, " \t")
		if err != nil {
			b.Abort()
			die("can't add <stdin>: %s", err)
		}

		fmt.Printf("+ <stdin>: %d records\n", n)
	}

	if err := b.Finish(); err != nil {
		die("can't write %s: %s", out, err)
	}
}

func die(f string, v ...interface{}) {
	warn(f, v...)
	os.Exit(1)
}

func warn(f string, v ...interface{}) {
	z := fmt.Sprintf("%s: %s", os.Args[0], f)
	s := fmt.Sprintf(z, v...)
	if n := len(s); n == 0 || s[n-1] != '\n' {
		s += "\n"
	}

	os.Stderr.WriteString(s)
	os.Stderr.Sync()
}
