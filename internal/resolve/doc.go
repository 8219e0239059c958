// Package resolve implements the resolution engine: the ordered fallback
// chain of title reformulations, the validation gate over provider results,
// and the cache short-circuit and id-refresh paths that keep provider
// traffic to a minimum.
package resolve
