package mongodb

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"inboxcore/core/port/out"
)

// translateQuery converts a predicate tree into a MongoDB filter.
// A nil root matches everything.
//
// Free-text multi-match maps to $text; the field weights live on the
// text index (see EnsureIndexes), so they are applied at index time
// rather than per query. $text is only legal at the top level or inside
// $and, which the query builders respect by never nesting a multi-match
// under should/must_not.
func translateQuery(p *out.Predicate) bson.M {
	if p == nil {
		return bson.M{}
	}

	switch p.Kind {
	case out.KindMultiMatch:
		return bson.M{"$text": bson.M{"$search": p.Text}}

	case out.KindTerm:
		return bson.M{p.Field: p.Value}

	case out.KindWildcard:
		// "s" lets `.` cross newlines so substring patterns match
		// multi-line bodies.
		return bson.M{p.Field: bson.M{
			"$regex":   wildcardToRegex(p.Pattern),
			"$options": "is",
		}}

	case out.KindRange:
		bounds := bson.M{}
		if p.GTE != nil {
			bounds["$gte"] = p.GTE
		}
		if p.LTE != nil {
			bounds["$lte"] = p.LTE
		}
		return bson.M{p.Field: bounds}

	case out.KindExists:
		return bson.M{p.Field: bson.M{"$exists": true}}

	case out.KindBool:
		return translateBool(p)
	}

	return bson.M{}
}

func translateBool(p *out.Predicate) bson.M {
	clauses := bson.M{}

	if len(p.Must) > 0 {
		must := make([]bson.M, len(p.Must))
		for i, sub := range p.Must {
			must[i] = translateQuery(sub)
		}
		clauses["$and"] = must
	}

	if len(p.Should) > 0 {
		should := make([]bson.M, len(p.Should))
		for i, sub := range p.Should {
			should[i] = translateQuery(sub)
		}
		// MinimumShouldMatch beyond 1 is not expressible with $or;
		// the engine only ever asks for "at least one".
		clauses["$or"] = should
	}

	if len(p.MustNot) > 0 {
		mustNot := make([]bson.M, len(p.MustNot))
		for i, sub := range p.MustNot {
			mustNot[i] = translateQuery(sub)
		}
		clauses["$nor"] = mustNot
	}

	return clauses
}

// wildcardToRegex builds an anchored regex where `*` matches any run of
// characters and everything else is literal.
func wildcardToRegex(pattern string) string {
	parts := strings.Split(pattern, "*")
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	return "^" + strings.Join(parts, ".*") + "$"
}
