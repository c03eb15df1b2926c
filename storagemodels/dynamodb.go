/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDB attribute names for a Document item. The key templates registered
// for Document reference AttrKey.
const (
	AttrKey          = "key"
	AttrVersion      = "version"
	AttrMinorVersion = "minor_version"
	AttrData         = "data"
)

// MarshalDynamoDBAttributeValue stores the snapshot as a JSON string attribute
// so every backend shares one payload encoding.
func (d Document) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	data, err := json.Marshal(d.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document data: %w", err)
	}
	return &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
		AttrKey:          &types.AttributeValueMemberS{Value: d.Key},
		AttrVersion:      &types.AttributeValueMemberN{Value: strconv.Itoa(d.Version)},
		AttrMinorVersion: &types.AttributeValueMemberN{Value: strconv.Itoa(d.MinorVersion)},
		AttrData:         &types.AttributeValueMemberS{Value: string(data)},
	}}, nil
}

// UnmarshalDynamoDBAttributeValue is the inverse of MarshalDynamoDBAttributeValue.
// Extra attributes such as PK and SK are ignored.
func (d *Document) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	m, ok := av.(*types.AttributeValueMemberM)
	if !ok {
		return fmt.Errorf("document attribute must be a map, got %T", av)
	}

	key, err := stringAttr(m.Value, AttrKey)
	if err != nil {
		return err
	}
	version, err := intAttr(m.Value, AttrVersion)
	if err != nil {
		return err
	}
	minor, err := intAttr(m.Value, AttrMinorVersion)
	if err != nil {
		return err
	}
	raw, err := stringAttr(m.Value, AttrData)
	if err != nil {
		return err
	}

	var data Snapshot
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return fmt.Errorf("failed to unmarshal document data: %w", err)
	}

	*d = Document{Key: key, Version: version, MinorVersion: minor, Data: data}
	return nil
}

func stringAttr(item map[string]types.AttributeValue, name string) (string, error) {
	v, ok := item[name].(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("missing string attribute %q", name)
	}
	return v.Value, nil
}

func intAttr(item map[string]types.AttributeValue, name string) (int, error) {
	v, ok := item[name].(*types.AttributeValueMemberN)
	if !ok {
		// minor_version was added later; treat absence as zero
		if _, present := item[name]; !present && name == AttrMinorVersion {
			return 0, nil
		}
		return 0, fmt.Errorf("missing number attribute %q", name)
	}
	n, err := strconv.Atoi(v.Value)
	if err != nil {
		return 0, fmt.Errorf("attribute %q: %w", name, err)
	}
	return n, nil
}
