package client

import (
	"context"
	"encoding/json"
	"fmt"
)

// IntrospectionQuery is the query GraphiQL runs to build its schema.
const IntrospectionQuery = `
query IntrospectionQuery {
	__schema {
		queryType { name }
		mutationType { name }
		subscriptionType { name }
		types {
			...FullType
		}
		directives {
			name
			description
			locations
			args {
				...InputValue
			}
		}
	}
}
fragment FullType on __Type {
	kind
	name
	description
	fields(includeDeprecated: true) {
		name
		description
		args {
			...InputValue
		}
		type {
			...TypeRef
		}
		isDeprecated
		deprecationReason
	}
	inputFields {
		...InputValue
	}
	interfaces {
		...TypeRef
	}
	enumValues(includeDeprecated: true) {
		name
		description
		isDeprecated
		deprecationReason
	}
	possibleTypes {
		...TypeRef
	}
}
fragment InputValue on __InputValue {
	name
	description
	type { ...TypeRef }
	defaultValue
}
fragment TypeRef on __Type {
	kind
	name
	ofType {
		kind
		name
		ofType {
			kind
			name
			ofType {
				kind
				name
				ofType {
					kind
					name
					ofType {
						kind
						name
						ofType {
							kind
							name
							ofType {
								kind
								name
							}
						}
					}
				}
			}
		}
	}
}
`

type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Introspect runs IntrospectionQuery and returns the "data" member of the response.
func (c *Client) Introspect(ctx context.Context) (json.RawMessage, error) {
	result, err := c.Do(ctx, Params{Query: IntrospectionQuery, OperationName: "IntrospectionQuery"})
	if err != nil {
		return nil, err
	}
	if result.JSON == nil {
		return nil, fmt.Errorf("client: introspection returned non JSON body (status %d)", result.StatusCode)
	}
	var env envelope
	if err := json.Unmarshal(result.JSON, &env); err != nil {
		return nil, fmt.Errorf("client: decode introspection: %w", err)
	}
	if len(env.Errors) > 0 {
		return nil, fmt.Errorf("client: introspection failed: %s", env.Errors[0].Message)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, fmt.Errorf("client: introspection returned no data")
	}
	return env.Data, nil
}
