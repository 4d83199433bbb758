package graphiql

import (
	"html/template"
	"net/http"

	"github.com/shyptr/graphiql/client"
)

type pageData struct {
	Endpoint           string
	LocateURL          string
	SchemaURL          string
	Credentials        string
	DefaultQuery       string
	IntrospectionQuery string
}

func (s *Server) pageData() pageData {
	base := s.config.RootURL + "/graphql"
	return pageData{
		Endpoint:           base + "/",
		LocateURL:          base + "/locate",
		SchemaURL:          base + "/schema",
		Credentials:        s.config.Upstream.Credentials,
		DefaultQuery:       s.config.DefaultQuery,
		IntrospectionQuery: client.IntrospectionQuery,
	}
}

var pages = template.Must(template.New("pages").Parse(graphiQLPage + playgroundPage))

func (s *Server) render(c *Context, name string) {
	c.Writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.ExecuteTemplate(c.Writer, name, s.pageData()); err != nil {
		c.ServerError(err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) serveGraphiQL(c *Context) {
	s.render(c, "graphiql")
}

// serveSchema hands the explorer the prefetched introspection result, 204 until
// it has arrived.
func (s *Server) serveSchema(c *Context) {
	data, ok := s.store.Introspection()
	if !ok {
		c.Writer.WriteHeader(http.StatusNoContent)
		return
	}
	c.Writer.Header().Set("Content-Type", "application/json")
	c.Writer.Write([]byte(`{"data":`))
	c.Writer.Write(data)
	c.Writer.Write([]byte(`}`))
}

const graphiQLPage = `
{{ define "graphiql" }}
<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8" />
    <title>GraphiQL</title>
    <meta name="robots" content="noindex" />
    <meta name="referrer" content="origin">
    <link href="https://unpkg.com/graphiql@0.17.5/graphiql.min.css" rel="stylesheet"/>
    <link href="https://unpkg.com/codemirror@5.65.2/theme/neo.css" rel="stylesheet"/>
    <link href="https://unpkg.com/graphiql-code-exporter@2.0.8/CodeExporter.css" rel="stylesheet"/>
    <script src="https://unpkg.com/react@16.14.0/umd/react.production.min.js"></script>
    <script src="https://unpkg.com/react-dom@16.14.0/umd/react-dom.production.min.js"></script>
    <script src="https://unpkg.com/graphiql@0.17.5/graphiql.min.js"></script>
    <script src="https://unpkg.com/graphiql-explorer@0.6.3/graphiqlExplorer.min.js"></script>
    <script src="https://unpkg.com/graphiql-code-exporter@2.0.8/lib/index.js"></script>
</head>
<body style="width: 100%; height: 100%; margin: 0; overflow: hidden;">
<div id="graphiql" class="graphiql-container" style="height: 100vh;">Loading...</div>
<script>
    const endpoint = {{.Endpoint}};
    const locateURL = {{.LocateURL}};
    const schemaURL = {{.SchemaURL}};
    const credentials = {{.Credentials}};
    const introspectionQuery = {{.IntrospectionQuery}};
    const e = React.createElement;

    function fetcher(params) {
        return fetch(endpoint, {
            method: "post",
            headers: {
                "Accept": "application/json",
                "Content-Type": "application/json"
            },
            body: JSON.stringify(params),
            credentials: credentials,
        }).then(function (response) {
            return response.text();
        }).then(function (responseBody) {
            try {
                return JSON.parse(responseBody);
            } catch (error) {
                return responseBody;
            }
        });
    }

    function loadSchema() {
        return fetch(schemaURL, {credentials: credentials}).then(function (response) {
            if (response.status === 200) {
                return response.json();
            }
            return fetcher({query: introspectionQuery, operationName: "IntrospectionQuery"});
        });
    }

    class App extends React.Component {
        constructor(props) {
            super(props);
            this.state = {schema: null, query: {{.DefaultQuery}}, explorerIsOpen: true, codeExporterIsVisible: false};
        }

        componentDidMount() {
            const editor = this._graphiql.getQueryEditor();
            editor.setOption("extraKeys", Object.assign({}, editor.options.extraKeys || {}, {
                "Shift-Alt-LeftClick": this.handleInspectOperation
            }));
            loadSchema().then(result => {
                if (result && result.data) {
                    this.setState({schema: GraphiQL.buildClientSchema ? GraphiQL.buildClientSchema(result.data) : null});
                }
            });
        }

        handleInspectOperation = (cm, mousePos) => {
            fetch(locateURL, {
                method: "post",
                headers: {"Content-Type": "application/json"},
                body: JSON.stringify({query: this.state.query || "", position: {line: mousePos.line, ch: mousePos.ch}}),
                credentials: credentials,
            }).then(function (response) {
                return response.status === 200 ? response.json() : null;
            }).then(function (found) {
                if (!found) {
                    return;
                }
                const el = document.querySelector(found.selector);
                if (el) {
                    el.scrollIntoView();
                }
            });
        };

        handleEditQuery = query => this.setState({query: query});
        handleToggleExplorer = () => this.setState({explorerIsOpen: !this.state.explorerIsOpen});
        handleToggleCodeExporter = () => this.setState({codeExporterIsVisible: !this.state.codeExporterIsVisible});

        render() {
            const {query, schema, codeExporterIsVisible, explorerIsOpen} = this.state;
            const codeExporter = codeExporterIsVisible && window.GraphiQLCodeExporter ? e(GraphiQLCodeExporter, {
                hideCodeExporter: this.handleToggleCodeExporter,
                serverUrl: window.location.protocol + "//" + window.location.host + endpoint,
                query: query,
                codeMirrorTheme: "neo"
            }) : null;
            return e("div", {className: "graphiql-container"},
                e(GraphiQLExplorer.Explorer, {
                    schema: schema,
                    query: query,
                    onEdit: this.handleEditQuery,
                    onRunOperation: operationName => this._graphiql.handleRunQuery(operationName),
                    explorerIsOpen: explorerIsOpen,
                    onToggleExplorer: this.handleToggleExplorer
                }),
                e(GraphiQL, {
                    ref: ref => (this._graphiql = ref),
                    fetcher: fetcher,
                    schema: schema,
                    query: query,
                    onEditQuery: this.handleEditQuery
                }, e(GraphiQL.Toolbar, {},
                    e(GraphiQL.Button, {onClick: () => this._graphiql.handlePrettifyQuery(), label: "Prettify", title: "Prettify Query (Shift-Ctrl-P)"}),
                    e(GraphiQL.Button, {onClick: () => this._graphiql.handleToggleHistory(), label: "History", title: "Show History"}),
                    e(GraphiQL.Button, {onClick: this.handleToggleExplorer, label: "Explorer", title: "Toggle Explorer"}),
                    e(GraphiQL.Button, {onClick: this.handleToggleCodeExporter, label: "Code Exporter", title: "Toggle Code Exporter"})
                )),
                codeExporter
            );
        }
    }

    ReactDOM.render(e(App), document.getElementById("graphiql"));
</script>
</body>
</html>
{{ end }}
`
