package stage

import (
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Fragment builders produce canonical operator fragments for embedding in
// stage payloads. They are pure and stateless; composition happens through
// ordinary document construction, at any nesting depth.

// Eq builds an equality test fragment.
func Eq(value any) bson.M { return bson.M{"$eq": value} }

// Ne builds an inequality test fragment.
func Ne(value any) bson.M { return bson.M{"$ne": value} }

// Gt builds a greater-than test fragment.
func Gt(value any) bson.M { return bson.M{"$gt": value} }

// Gte builds a greater-or-equal test fragment.
func Gte(value any) bson.M { return bson.M{"$gte": value} }

// Lt builds a less-than test fragment.
func Lt(value any) bson.M { return bson.M{"$lt": value} }

// Lte builds a less-or-equal test fragment.
func Lte(value any) bson.M { return bson.M{"$lte": value} }

// In builds a membership test fragment. A single slice argument is used
// directly as the candidate set, and a single placeholder token stands in
// for the whole set until substitution.
func In(values ...any) bson.M { return bson.M{"$in": listOf(values)} }

// Nin builds a negated membership test fragment with the same candidate
// set handling as In.
func Nin(values ...any) bson.M { return bson.M{"$nin": listOf(values)} }

// And combines expressions conjunctively.
func And(exprs ...any) bson.M { return bson.M{"$and": bson.A(exprs)} }

// Or combines expressions disjunctively.
func Or(exprs ...any) bson.M { return bson.M{"$or": bson.A(exprs)} }

// Not negates an operator expression.
func Not(expr any) bson.M { return bson.M{"$not": expr} }

// Exists builds a field-presence test fragment.
func Exists(exists bool) bson.M { return bson.M{"$exists": exists} }

// Regex builds a regular-expression match fragment. Options may be empty.
func Regex(pattern, options string) bson.M {
	if options == "" {
		return bson.M{"$regex": pattern}
	}
	return bson.M{"$regex": pattern, "$options": options}
}

// Sum builds a summation accumulator over an expression.
func Sum(expr any) bson.M { return bson.M{"$sum": expr} }

// Count builds a counting accumulator, the canonical {$sum: 1}.
func Count() bson.M { return bson.M{"$sum": 1} }

// Avg builds an average accumulator.
func Avg(expr any) bson.M { return bson.M{"$avg": expr} }

// Min builds a minimum accumulator.
func Min(expr any) bson.M { return bson.M{"$min": expr} }

// Max builds a maximum accumulator.
func Max(expr any) bson.M { return bson.M{"$max": expr} }

// First builds a first-in-group accumulator.
func First(expr any) bson.M { return bson.M{"$first": expr} }

// Last builds a last-in-group accumulator.
func Last(expr any) bson.M { return bson.M{"$last": expr} }

// Push builds an array-collecting accumulator.
func Push(expr any) bson.M { return bson.M{"$push": expr} }

// AddToSet builds a set-collecting accumulator.
func AddToSet(expr any) bson.M { return bson.M{"$addToSet": expr} }

// Field returns the expression reference for a document field, e.g.
// Field("total") == "$total". Already-prefixed names pass through.
func Field(name string) string {
	if strings.HasPrefix(name, "$") {
		return name
	}
	return "$" + name
}

func listOf(values []any) any {
	if len(values) == 1 {
		switch v := values[0].(type) {
		case bson.A:
			return v
		case []any:
			return bson.A(v)
		case []string:
			out := make(bson.A, len(v))
			for i, s := range v {
				out[i] = s
			}
			return out
		case string:
			if strings.Contains(v, TokenSigil) {
				return v
			}
		}
	}
	return bson.A(values)
}
