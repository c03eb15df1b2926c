/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func TestTimeOrEpoch(t *testing.T) {
	if got := TimeOrEpoch(nil); !got.Equal(time.Unix(0, 0)) {
		t.Errorf("Expected epoch for nil timestamp, got %v", got)
	}

	ts := time.Date(2025, 2, 3, 4, 5, 6, 0, time.FixedZone("X", 3600))
	if got := TimeOrEpoch(NewDateTime(ts)); !got.Equal(ts) || got.Location() != time.UTC {
		t.Errorf("Expected %v in UTC, got %v", ts, got)
	}
}

func TestSnapshotRetiredIDs(t *testing.T) {
	data, err := json.Marshal(Snapshot{Labels: []LabelRecord{}})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if strings.Contains(string(data), "retired_ids") {
		t.Errorf("Empty retired ids should be omitted: %s", data)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(`{"labels":[],"retired_ids":["work","home"]}`), &snap); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(snap.RetiredIDs) != 2 || snap.RetiredIDs[0] != "work" {
		t.Errorf("Unexpected retired ids: %v", snap.RetiredIDs)
	}
}

func TestLabelRecordJSON(t *testing.T) {
	rec := LabelRecord{LabelID: "work", Name: "Work"}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	s := string(data)
	for _, want := range []string{`"label_id":"work"`, `"color":null`, `"description":null`, `"icon":null`} {
		if !strings.Contains(s, want) {
			t.Errorf("Expected %s in %s", want, s)
		}
	}
	if strings.Contains(s, "created_at") {
		t.Errorf("Absent timestamps should be omitted: %s", s)
	}
}

func TestDocumentDynamoDBAttributes(t *testing.T) {
	color := "red"
	doc := Document{
		Key:          "core.label_registry",
		Version:      1,
		MinorVersion: 2,
		Data: Snapshot{Labels: []LabelRecord{{
			LabelID:   "work",
			Name:      "Work",
			Color:     &color,
			CreatedAt: NewDateTime(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
		}}},
	}

	item, err := attributevalue.MarshalMap(doc)
	if err != nil {
		t.Fatalf("MarshalMap failed: %v", err)
	}
	if _, ok := item[AttrData].(*types.AttributeValueMemberS); !ok {
		t.Fatalf("Expected data to be stored as a string attribute, got %T", item[AttrData])
	}

	// backends add key attributes next to the document fields
	item["PK"] = &types.AttributeValueMemberS{Value: "DOC#core.label_registry"}

	var got Document
	if err := attributevalue.UnmarshalMap(item, &got); err != nil {
		t.Fatalf("UnmarshalMap failed: %v", err)
	}
	if got.Key != doc.Key || got.Version != 1 || got.MinorVersion != 2 {
		t.Errorf("Envelope mismatch: %+v", got)
	}
	if len(got.Data.Labels) != 1 || *got.Data.Labels[0].Color != "red" {
		t.Errorf("Payload mismatch: %+v", got.Data)
	}
	if !TimeOrEpoch(got.Data.Labels[0].CreatedAt).Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Timestamp mismatch: %v", got.Data.Labels[0].CreatedAt)
	}
}

func TestDocumentMissingMinorVersion(t *testing.T) {
	item := map[string]types.AttributeValue{
		AttrKey:     &types.AttributeValueMemberS{Value: "k"},
		AttrVersion: &types.AttributeValueMemberN{Value: "1"},
		AttrData:    &types.AttributeValueMemberS{Value: `{"labels":[]}`},
	}

	var got Document
	if err := attributevalue.UnmarshalMap(item, &got); err != nil {
		t.Fatalf("UnmarshalMap failed: %v", err)
	}
	if got.MinorVersion != 0 {
		t.Errorf("Expected minor version 0, got %d", got.MinorVersion)
	}

	delete(item, AttrVersion)
	if err := attributevalue.UnmarshalMap(item, &got); err == nil {
		t.Error("Expected error when version is missing")
	}
}
