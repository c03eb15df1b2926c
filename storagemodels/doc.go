/*
Package storagemodels defines the data structures persisted by the label registry.

Key Types:

Document:
The versioned envelope stored under a single key by every backend:

	doc := storagemodels.Document{
	    Key:          "core.label_registry",
	    Version:      1,
	    MinorVersion: 2,
	    Data: storagemodels.Snapshot{
	        Labels: []storagemodels.LabelRecord{
	            {LabelID: "work", Name: "Work"},
	        },
	    },
	}

LabelRecord:
The on-disk form of one label. Optional fields are pointers so that an absent
value round-trips as JSON null:

	{"label_id": "work", "name": "Work", "color": null, "description": null, "icon": null}

Timestamps use go-openapi/strfmt date-time formatting. Document implements the
DynamoDB attributevalue Marshaler so the payload is stored as one JSON attribute.
*/
package storagemodels
