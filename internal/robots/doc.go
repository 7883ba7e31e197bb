// Package robots resolves and evaluates robots exclusion policies.
//
// The resolver fetches {scheme}://{host}/robots.txt through the crawl
// fetcher, parses the standard User-agent/Allow/Disallow syntax, and
// caches one policy per host. Evaluation follows robots exclusion
// semantics: longest-match-wins path rules, case-insensitive user agent
// matching with "*" fallback, allow by default.
//
// Resolution never fails: a missing, unreachable, or unparsable
// robots.txt yields the permissive policy, so crawling degrades
// gracefully instead of halting.
package robots
