// main.go -- mcdbstat: inspect an mcdb file: on-disk size and lookups
//
// Author: Sudhi Herle <sudhi@herle.net>
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/haguenau/mcdb"
	"github.com/haguenau/mcdb/internal/humanize"
)

var (
	tag    uint8
	lookup string
)

func main() {
	usage := fmt.Sprintf("%s [options] DBFILE", os.Args[0])

	flag.Uint8VarP(&tag, "tag", "t", 0, "Namespace tag to use for --lookup")
	flag.StringVarP(&lookup, "lookup", "l", "", "Print the value(s) for KEY and exit")
	flag.Usage = func() {
		fmt.Printf("mcdbstat - inspect an mcdb constant DB\nUsage: %s\n", usage)
		flag.PrintDefaults()
	}

	flag.Parse()
	args := flag.Args()

	if len(args) != 1 {
		die("exactly one DBFILE required\nUsage: %s\n", usage)
	}

	db, err := mcdb.Open(args[0])
	if err != nil {
		die("can't open %s: %s", args[0], err)
	}
	defer db.Close()

	if lookup != "" {
		printLookup(db, lookup)
		return
	}

	st, err := os.Stat(args[0])
	if err != nil {
		die("can't stat %s: %s", args[0], err)
	}

	fmt.Printf("%s: %s\n", args[0], humanize.Size(uint64(st.Size())))
}

func printLookup(db *mcdb.DB, key string) {
	c, err := db.FindTagged(tag, []byte(key))
	if err != nil {
		die("lookup %q: %s", key, err)
	}

	n := 0
	for {
		v, ok := c.Next()
		if !ok {
			break
		}
		fmt.Printf("%s\n", v)
		n++
	}

	if n == 0 {
		die("%q: no such key", key)
	}
}

func die(f string, v ...interface{}) {
	z := fmt.Sprintf("%s: %s", os.Args[0], f)
	s := fmt.Sprintf(z, v...)
	if n := len(s); n == 0 || s[n-1] != '\n' {
		s += "\n"
	}

	os.Stderr.WriteString(s)
	os.Stderr.Sync()
	os.Exit(1)
}
