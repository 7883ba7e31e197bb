package crawler

import (
	"container/heap"
	"net/url"
	"sort"
	"strings"
)

// frontierEntry is one queued URL with the depth it was discovered at.
type frontierEntry struct {
	url      string
	depth    int
	priority int
	seq      uint64
}

// entryHeap orders entries by descending priority; equal priorities
// keep insertion order, so the frontier degrades to FIFO when nothing
// stands out.
type entryHeap []*frontierEntry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority > h[j].priority
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) {
	*h = append(*h, x.(*frontierEntry))
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return entry
}

// frontier is the crawl's work queue. URLs are deduplicated in their
// normalized form across the whole crawl: a URL that has ever been
// queued or visited is never queued again.
type frontier struct {
	heap    entryHeap
	queued  map[string]bool
	visited map[string]bool
	seq     uint64
}

func newFrontier() *frontier {
	return &frontier{
		queued:  make(map[string]bool),
		visited: make(map[string]bool),
	}
}

// push queues a URL at the given depth and priority. It reports false
// when the URL was already queued or visited.
func (f *frontier) push(rawURL string, depth, priority int) bool {
	normalized := normalizeURL(rawURL)
	if f.queued[normalized] || f.visited[normalized] {
		return false
	}
	f.queued[normalized] = true
	f.seq++
	heap.Push(&f.heap, &frontierEntry{
		url:      normalized,
		depth:    depth,
		priority: priority,
		seq:      f.seq,
	})
	return true
}

// pop removes and returns the highest-priority entry, marking it
// visited so redirects and repeated discoveries cannot requeue it.
func (f *frontier) pop() (*frontierEntry, bool) {
	for f.heap.Len() > 0 {
		entry := heap.Pop(&f.heap).(*frontierEntry)
		delete(f.queued, entry.url)
		if f.visited[entry.url] {
			continue
		}
		f.visited[entry.url] = true
		return entry, true
	}
	return nil, false
}

// markVisited records an additional URL as seen. The crawler calls it
// with the final URL after redirects, so both ends of a redirect chain
// count as visited.
func (f *frontier) markVisited(rawURL string) {
	f.visited[normalizeURL(rawURL)] = true
}

// size reports how many entries remain queued.
func (f *frontier) size() int {
	return f.heap.Len()
}

// visitedURLs returns every visited URL in sorted order.
func (f *frontier) visitedURLs() []string {
	urls := make([]string, 0, len(f.visited))
	for u := range f.visited {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}

// normalizeURL maps URL spellings that serve the same page to one
// form: the fragment is dropped, scheme and host are lowercased,
// default ports are stripped, and an empty path becomes "/". A URL
// that does not parse is returned unchanged.
func normalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	switch {
	case u.Scheme == "http" && strings.HasSuffix(u.Host, ":80"):
		u.Host = strings.TrimSuffix(u.Host, ":80")
	case u.Scheme == "https" && strings.HasSuffix(u.Host, ":443"):
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}

	if u.Path == "" {
		u.Path = "/"
	}

	return u.String()
}
