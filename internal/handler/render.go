package handler

import (
	"bytes"
	"html/template"

	"msgboard/internal/model"
)

const pageTitle = "Message board"

var pageTemplate = template.Must(template.New("messages").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<ul>
{{- range .Messages}}
<li>{{.Username}} ({{.Timestamp}}): {{.Message}}</li>
{{- end}}
</ul>
</body>
</html>
`))

type page struct {
	Title    string
	Messages []model.Message
}

// renderMessages renders the message list page. html/template escapes
// usernames and message bodies.
func renderMessages(messages []model.Message) ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page{Title: pageTitle, Messages: messages}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
