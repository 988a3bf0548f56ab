// Package wordfreq counts the most common words in harvested text,
// ignoring a fixed list of English stopwords.
package wordfreq

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/IshaanNene/NewsDentist/internal/types"
)

var stopwords = func() map[string]bool {
	list := "a,able,about,across,after,all,almost,also,am,among,an,and,any," +
		"are,as,at,be,because,been,but,by,can,cannot,could,dear,did,do," +
		"does,either,else,ever,every,for,from,get,got,had,has,have,he,her" +
		",hers,him,his,how,however,i,if,in,into,is,it,its,just,least,let," +
		"like,likely,may,me,might,most,must,my,neither,no,nor,not,of,off," +
		"often,on,only,or,other,our,own,rather,said,say,says,she,should," +
		"since,so,some,than,that,the,their,them,then,there,these,they," +
		"this,tis,to,too,twas,us,wants,was,we,were,what,when,where,which," +
		"while,who,whom,why,will,with,would,yet,you,your"
	m := make(map[string]bool)
	for _, w := range strings.Split(list, ",") {
		m[w] = true
	}
	return m
}()

var punctuation = strings.NewReplacer(".", "", ",", "", `"`, "")

// Clean strips full stops, commas and double quotes from a word.
func Clean(w string) string {
	return punctuation.Replace(w)
}

// IsStopword reports whether the cleaned, lowercased word is a stopword.
func IsStopword(w string) bool {
	return stopwords[strings.ToLower(Clean(w))]
}

// WordCount is one row of a frequency table.
type WordCount struct {
	Word  string
	Count int
}

// Counter accumulates case-sensitive word counts. It is not safe for
// concurrent use.
type Counter struct {
	counts map[string]int
	order  []string
}

// NewCounter creates an empty Counter.
func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int)}
}

// AddLine counts the words of one line.
func (c *Counter) AddLine(line string) {
	for _, raw := range strings.Fields(line) {
		w := Clean(raw)
		if w == "" || stopwords[strings.ToLower(w)] {
			continue
		}
		if _, ok := c.counts[w]; !ok {
			c.order = append(c.order, w)
		}
		c.counts[w]++
	}
}

// AddText counts every line read from r.
func (c *Counter) AddText(r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		c.AddLine(sc.Text())
	}
	return sc.Err()
}

// Count returns how often w was seen.
func (c *Counter) Count(w string) int {
	return c.counts[w]
}

// Len returns the number of distinct words.
func (c *Counter) Len() int {
	return len(c.order)
}

// MostCommon returns the n most frequent words, highest first. Words with
// equal counts keep the order in which they were first seen. n <= 0 returns
// every word.
func (c *Counter) MostCommon(n int) []WordCount {
	rows := make([]WordCount, len(c.order))
	for i, w := range c.order {
		rows[i] = WordCount{Word: w, Count: c.counts[w]}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Count > rows[j].Count
	})
	if n > 0 && n < len(rows) {
		rows = rows[:n]
	}
	return rows
}

// CountString counts the words of an artifact's content.
func CountString(content string) (*Counter, error) {
	if content == types.PendingArtifact {
		return nil, types.ErrPlaceholder
	}
	c := NewCounter()
	if err := c.AddText(strings.NewReader(content)); err != nil {
		return nil, err
	}
	return c, nil
}

// CountFile counts the words of the artifact file at path.
func CountFile(path string) (*Counter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return CountString(string(data))
}
