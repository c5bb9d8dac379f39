package server

import (
	"html/template"
	"io"
)

// formPage is the single page served by the preview server: the demographic form,
// followed by the status of the last run and its inline preview.
var formPage = template.Must(template.New("form").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Personalized Health Tips</title>
<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.0/dist/css/bootstrap.min.css">
</head>
<body>
<div class="container mt-4" style="max-width: 720px">
  <h1 class="mb-4">Personalized Health Tips</h1>
  <form method="post" action="/generate" class="row g-3 mb-4">
    <div class="col-sm-4">
      <label for="age" class="form-label">Age</label>
      <input type="number" class="form-control" id="age" name="age" min="0" max="120" value="{{.Age}}" required>
    </div>
    <div class="col-sm-4">
      <label for="gender" class="form-label">Gender</label>
      <select class="form-select" id="gender" name="gender">
        <option value="male"{{if eq .Gender "male"}} selected{{end}}>Male</option>
        <option value="female"{{if eq .Gender "female"}} selected{{end}}>Female</option>
      </select>
    </div>
    <div class="col-sm-4 d-flex align-items-end">
      <button type="submit" class="btn btn-primary w-100">Generate</button>
    </div>
  </form>
  {{if .Message}}<div class="alert {{if .OK}}alert-success{{else}}alert-warning{{end}}" role="status">{{.Message}}</div>{{end}}
  {{if .Warnings}}<ul class="small text-muted">{{range .Warnings}}<li>{{.}}</li>{{end}}</ul>{{end}}
  {{.Preview}}
</div>
</body>
</html>
`))

type formView struct {
	Age      int
	Gender   string
	Message  string
	OK       bool
	Warnings []string
	Preview  template.HTML
}

func renderForm(w io.Writer, view formView) error {
	if view.Gender == "" {
		view.Gender = "male"
	}
	return formPage.Execute(w, view)
}
