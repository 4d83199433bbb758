package graphiql

func (s *Server) servePlayground(c *Context) {
	s.render(c, "playground")
}

const playgroundPage = `
{{ define "playground" }}
<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="user-scalable=no, initial-scale=1.0, minimum-scale=1.0, maximum-scale=1.0, minimal-ui">
    <title>GraphQL Playground</title>
    <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/graphql-playground-react/build/static/css/index.css" />
    <script src="https://cdn.jsdelivr.net/npm/graphql-playground-react/build/static/js/middleware.js"></script>
    <style>
        .fadeOut { opacity: 0; transition: opacity 0.5s ease-out; }
        .playgroundIn { animation: playgroundIn 0.5s ease-out forwards; }
        @keyframes playgroundIn { from { opacity: 0; } to { opacity: 1; } }
    </style>
</head>
<body>
<div id="loading-wrapper">Loading GraphQL Playground</div>
<div id="root"></div>
<script>
    window.addEventListener("load", function () {
        const loadingWrapper = document.getElementById("loading-wrapper");
        loadingWrapper.classList.add("fadeOut");
        const root = document.getElementById("root");
        root.classList.add("playgroundIn");
        GraphQLPlayground.init(root, {
            endpoint: {{.Endpoint}},
            settings: {
                "request.credentials": {{.Credentials}},
                "schema.polling.enable": false
            }
        });
    });
</script>
</body>
</html>
{{ end }}
`
