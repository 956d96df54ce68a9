package mongodb

import (
	"reflect"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"inboxcore/core/port/out"
)

func TestWildcardToRegex(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"*invoice*", "^.*invoice.*$"},
		{"*.pdf", "^.*\\.pdf$"},
		{"alice@x.com", "^alice@x\\.com$"},
		{"*", "^.*$"},
		{"", "^$"},
	}
	for _, tt := range tests {
		if got := wildcardToRegex(tt.pattern); got != tt.want {
			t.Errorf("wildcardToRegex(%q) = %q, want %q", tt.pattern, got, tt.want)
		}
	}
}

func TestTranslateQueryLeaves(t *testing.T) {
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		pred *out.Predicate
		want bson.M
	}{
		{
			name: "nil matches everything",
			pred: nil,
			want: bson.M{},
		},
		{
			name: "term",
			pred: out.Term(out.FieldIsRead, false),
			want: bson.M{"is_read": false},
		},
		{
			name: "wildcard",
			pred: out.Wildcard(out.FieldSenderEmail, "*@vendor.com"),
			want: bson.M{"sender.email": bson.M{"$regex": "^.*@vendor\\.com$", "$options": "is"}},
		},
		{
			name: "multi match",
			pred: out.MultiMatch("quarterly report", nil, true),
			want: bson.M{"$text": bson.M{"$search": "quarterly report"}},
		},
		{
			name: "range both bounds",
			pred: out.Range(out.FieldDate, from, to),
			want: bson.M{"date": bson.M{"$gte": from, "$lte": to}},
		},
		{
			name: "range lower bound only",
			pred: out.Range(out.FieldDate, from, nil),
			want: bson.M{"date": bson.M{"$gte": from}},
		},
		{
			name: "exists",
			pred: out.Exists(out.FieldCategory),
			want: bson.M{"category": bson.M{"$exists": true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateQuery(tt.pred)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("translateQuery() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestTranslateBool(t *testing.T) {
	pred := out.Bool().
		WithMust(
			out.Term(out.FieldHasAttachments, true),
			out.Bool().WithShould(
				out.Wildcard(out.FieldAttachmentName, "*invoice*"),
				out.Wildcard(out.FieldAttachmentContent, "*invoice*"),
			).WithMinimumShouldMatch(1),
		).
		WithMustNot(out.Term(out.FieldCategory, "spam"))

	got := translateQuery(pred)

	want := bson.M{
		"$and": []bson.M{
			{"has_attachments": true},
			{
				"$or": []bson.M{
					{"attachments.filename": bson.M{"$regex": "^.*invoice.*$", "$options": "is"}},
					{"attachments.parsed_content": bson.M{"$regex": "^.*invoice.*$", "$options": "is"}},
				},
			},
		},
		"$nor": []bson.M{
			{"category": "spam"},
		},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("translateQuery() = %#v, want %#v", got, want)
	}
}

func TestTranslateBoolEmpty(t *testing.T) {
	got := translateQuery(out.Bool())
	if len(got) != 0 {
		t.Errorf("empty bool should translate to an empty filter, got %#v", got)
	}
}
