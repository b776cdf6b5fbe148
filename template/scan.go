package template

import (
	"github.com/speedytwenty/mongodb-aggregate/pipeline"
	"github.com/speedytwenty/mongodb-aggregate/stage"
)

// Scan returns the variable names referenced by placeholder tokens
// anywhere in a payload, in first-appearance order without duplicates.
func Scan(payload any) []string {
	var names []string
	collectTokens(payload, map[string]bool{}, &names)
	return names
}

// ScanPipeline collects referenced variable names across every stage
// payload of a pipeline, in stage order.
func ScanPipeline(pl *pipeline.Pipeline) []string {
	var names []string
	seen := map[string]bool{}
	pl.ForEach(func(st *stage.Stage) {
		collectTokens(st.Payload(), seen, &names)
	})
	return names
}

func collectTokens(payload any, seen map[string]bool, names *[]string) {
	_ = stage.WalkValues(payload, func(v any) error {
		s, ok := v.(string)
		if !ok {
			return nil
		}
		for _, name := range stage.TokensIn(s) {
			if !seen[name] {
				seen[name] = true
				*names = append(*names, name)
			}
		}
		return nil
	})
}
