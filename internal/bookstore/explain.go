package bookstore

import (
	"strings"

	"github.com/spf13/cast"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Plan is the part of an executionStats explain the reports use. It is
// diagnostic output only.
type Plan struct {
	ExecutionTimeMillis int64
	TotalDocsExamined   int64
	TotalKeysExamined   int64
	NReturned           int64
	Stage               string // root stage of the winning plan
	IndexUsed           bool
	IndexName           string
}

// explainCommand wraps a find on collection in an executionStats explain.
func explainCommand(collection string, filter bson.D, hint *IndexSpec) bson.D {
	find := bson.D{
		{Key: "find", Value: collection},
		{Key: "filter", Value: nonNil(filter)},
	}
	if hint != nil {
		find = append(find, bson.E{Key: "hint", Value: hint.KeyDoc()})
	}
	return bson.D{
		{Key: "explain", Value: find},
		{Key: "verbosity", Value: "executionStats"},
	}
}

// ParsePlan extracts a Plan from a raw explain response. Both the classic
// (winningPlan.inputStage) and slot-based (winningPlan.queryPlan) layouts are
// understood.
func ParsePlan(raw bson.M) *Plan {
	plan := &Plan{}

	stats := asMap(raw["executionStats"])
	plan.ExecutionTimeMillis = cast.ToInt64(stats["executionTimeMillis"])
	plan.TotalDocsExamined = cast.ToInt64(stats["totalDocsExamined"])
	plan.TotalKeysExamined = cast.ToInt64(stats["totalKeysExamined"])
	plan.NReturned = cast.ToInt64(stats["nReturned"])

	winning := asMap(asMap(raw["queryPlanner"])["winningPlan"])
	if qp := asMap(winning["queryPlan"]); qp != nil {
		winning = qp
	}
	plan.Stage = cast.ToString(winning["stage"])

	if ix := findStage(winning, isIndexStage); ix != nil {
		plan.IndexUsed = true
		plan.IndexName = cast.ToString(ix["indexName"])
	}
	return plan
}

// isIndexStage matches the stages that read an index: IXSCAN and its
// EXPRESS_IXSCAN variant, COUNT_SCAN, DISTINCT_SCAN, or anything naming an index.
func isIndexStage(node bson.M) bool {
	switch stage := cast.ToString(node["stage"]); {
	case strings.HasSuffix(stage, "IXSCAN"), stage == "COUNT_SCAN", stage == "DISTINCT_SCAN":
		return true
	}
	return cast.ToString(node["indexName"]) != ""
}

func findStage(node bson.M, match func(bson.M) bool) bson.M {
	if node == nil {
		return nil
	}
	if match(node) {
		return node
	}
	if found := findStage(asMap(node["inputStage"]), match); found != nil {
		return found
	}
	for _, child := range asSlice(node["inputStages"]) {
		if found := findStage(asMap(child), match); found != nil {
			return found
		}
	}
	return nil
}

// asMap normalizes an embedded document, which the driver may hand back as
// either bson.M or bson.D.
func asMap(v any) bson.M {
	switch d := v.(type) {
	case bson.M:
		return d
	case map[string]any:
		return d
	case bson.D:
		m := make(bson.M, len(d))
		for _, e := range d {
			m[e.Key] = e.Value
		}
		return m
	}
	return nil
}

func asSlice(v any) []any {
	switch a := v.(type) {
	case bson.A:
		return a
	case []any:
		return a
	}
	return nil
}
