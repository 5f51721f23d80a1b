package classifiers

import (
	"math"
	"strings"

	"mapper/internal/graph"
)

// CompareCounts is 1 for equal counts and falls linearly to 0 as the
// difference approaches the larger count.
func CompareCounts(a, b int) float64 {
	if a == b {
		return 1
	}
	delta := math.Abs(float64(a - b))
	return 1 - delta/math.Max(float64(a), float64(b))
}

// CompareSets is the Jaccard index of two value sets. Two empty sets are
// equal.
func CompareSets[T comparable](a, b []T) float64 {
	setA := make(map[T]struct{}, len(a))
	for _, v := range a {
		setA[v] = struct{}{}
	}
	setB := make(map[T]struct{}, len(b))
	for _, v := range b {
		setB[v] = struct{}{}
	}

	matched := 0
	for v := range setB {
		if _, ok := setA[v]; ok {
			matched++
		}
	}
	total := len(setA) + len(setB) - matched
	if total == 0 {
		return 1
	}
	return float64(matched) / float64(total)
}

// CompareIdentitySets scores two entity sets from different versions.
// Matched elements count as equal when their counterpart is in the other
// set and as a mismatch when it is not. Unmatched elements count as equal
// as long as some element on the other side could still become their
// match.
func CompareIdentitySets[T comparable](a, b []T, matchOf func(T) (T, bool), equal func(x, y T) bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		if len(a) == 0 && len(b) == 0 {
			return 1
		}
		return 0
	}

	restB := make(map[T]struct{}, len(b))
	for _, y := range b {
		restB[y] = struct{}{}
	}
	total := len(restB)
	unmatched := 0

	seenA := make(map[T]struct{}, len(a))
	var restA []T
	for _, x := range a {
		if _, dup := seenA[x]; dup {
			continue
		}
		seenA[x] = struct{}{}
		total++

		if m, ok := matchOf(x); ok {
			if _, in := restB[m]; in {
				delete(restB, m)
			} else {
				unmatched++
			}
			continue
		}
		restA = append(restA, x)
	}

	for _, x := range restA {
		found := false
		for y := range restB {
			if equal(x, y) {
				found = true
				break
			}
		}
		if !found {
			unmatched++
		}
	}
	for y := range restB {
		found := false
		for _, x := range restA {
			if equal(x, y) {
				found = true
				break
			}
		}
		if !found {
			unmatched++
		}
	}

	return float64(total-unmatched) / float64(total)
}

// ComparePositions compares the relative position of two members within
// their owners.
func ComparePositions(posA, countA, posB, countB int) float64 {
	if countA <= 1 && countB <= 1 {
		return 1
	}
	relA := relative(posA, countA)
	relB := relative(posB, countB)
	return 1 - math.Abs(relA-relB)
}

func relative(pos, count int) float64 {
	if count <= 1 {
		return 0
	}
	return float64(pos) / float64(count-1)
}

// NameSimilarity is the Dice coefficient of the character bigrams of two
// names, compared case-insensitively.
func NameSimilarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == b {
		return 1
	}
	if len(a) < 2 || len(b) < 2 {
		return 0
	}

	grams := make(map[string]int)
	for i := 0; i+2 <= len(a); i++ {
		grams[a[i:i+2]]++
	}
	shared := 0
	for i := 0; i+2 <= len(b); i++ {
		g := b[i : i+2]
		if grams[g] > 0 {
			grams[g]--
			shared++
		}
	}
	return 2 * float64(shared) / float64(len(a)-1+len(b)-1)
}

// compareTypeLists compares two positional type lists from the source and
// destination versions. Types naming classes are equal when the classes are
// matched to each other, or when neither is matched yet and the
// expressions are identical.
func compareTypeLists(a, b []string, pkgA, pkgB string, env *graph.Environment) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	same := 0
	for i := 0; i < n; i++ {
		if sameType(a[i], b[i], pkgA, pkgB, env) {
			same++
		}
	}
	return float64(same) / float64(max(len(a), len(b)))
}

func sameType(a, b, pkgA, pkgB string, env *graph.Environment) bool {
	ca := env.A.ResolveType(a, pkgA)
	cb := env.B.ResolveType(b, pkgB)
	if ca == nil || cb == nil {
		return ca == nil && cb == nil && a == b
	}
	ma, mb := env.ClassMatch(ca), env.ClassMatch(cb)
	if ma == nil && mb == nil {
		return a == b
	}
	return ma == cb
}
