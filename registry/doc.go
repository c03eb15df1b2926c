/*
Package registry associates Go types with the key templates used by
key-value backends that need more than a single string key.

Index Map Registry:
Associates Go types with DynamoDB key patterns:

	indexMap := map[string]string{
	    "PK": "DOC#{key}",
	    "SK": "DOC#{key}",
	}
	registry.RegisterIndexMap[storagemodels.Document](indexMap)

Macros in braces name attributes of the marshaled entity. The registry is
thread-safe and should be populated during initialization, typically in
init() functions of the backend package.
*/
package registry
