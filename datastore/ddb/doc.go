/*
Package ddb provides a DynamoDB implementation of the DataStore interface.

Items are addressed through index maps registered in the registry package.
Templates use macros that are replaced with attribute values of the entity:

	indexMap := map[string]string{
	    "PK": "DOC#{key}",   // Becomes "DOC#core.label_registry"
	    "SK": "DOC#{key}",
	}

On GetOne and Delete the macros are replaced with the string key directly.
The index map for storagemodels.Document is registered by this package.

The table needs a string partition key "PK" and string sort key "SK":

	store, err := ddb.NewDynamodbDataStore[storagemodels.Document](ctx, ddb.Config{
	    Region: "us-east-1",
	    Table:  "labels",
	})
*/
package ddb
