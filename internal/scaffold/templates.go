package scaffold

import "text/template"

var (
	mainTemplate   = template.Must(template.New("main").Parse(mainStub))
	gomodTemplate  = template.Must(template.New("gomod").Parse(gomodStub))
	schemaTemplate = template.Must(template.New("schema").Parse(schemaStub))
	layoutTemplate = template.Must(template.New("layout").Parse(layoutStub))
	styleTemplate  = template.Must(template.New("style").Parse(styleStub))

	modelSQLTemplate = template.Must(template.New("modelsql").Parse(modelSQLStub))

	artifactTemplates = map[string]*template.Template{
		KindController: template.Must(template.New(KindController).Parse(controllerStub)),
		KindModel:      template.Must(template.New(KindModel).Parse(modelStub)),
		KindView:       template.Must(template.New(KindView).Parse(viewStub)),
	}
)

const mainStub = `// {{.Name}} entry point, generated by mamba-admin.
package main

import (
	"fmt"
	"log"
	"net/http"
)

func main() {
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "{{.Name}} is running")
	})

	log.Printf("{{.Name}} listening on :{{.Port}}")
	log.Fatal(http.ListenAndServe(":{{.Port}}", nil))
}
`

const gomodStub = `module {{.Name}}

go 1.24
`

const schemaStub = `-- {{.Name}} database schema
-- model generators append table definitions below
`

const layoutStub = `<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="utf-8">
    <title>{{.Name}}</title>
    <link rel="stylesheet" href="/stylesheets/style.css">
  </head>
  <body>
    <header>
      <h1>{{.Name}}</h1>
    </header>
    <main>
      <p>{{.Description}}</p>
    </main>
  </body>
</html>
`

const styleStub = `body {
    font-family: sans-serif;
    margin: 2em auto;
    max-width: 60em;
}
`

const controllerStub = `// -*- mamba-file-type: mamba-controller -*-
// Copyright (c) {{.Year}} - {{.Author}} <{{.Email}}>
//
// Platforms: {{.Platforms}}

package controller

import (
	"fmt"
	"net/http"
)

// {{.Name}} is a mamba controller{{with .Description}}: {{.}}{{end}}.
type {{.Name}} struct{}

// Route returns the url path this controller is mounted on.
func (c *{{.Name}}) Route() string {
	return "{{.Route}}"
}

// ServeHTTP answers every request below the controller route.
func (c *{{.Name}}) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintln(w, "{{.Name}} works!")
}
`

const modelStub = `// -*- mamba-file-type: mamba-model -*-
// Copyright (c) {{.Year}} - {{.Author}} <{{.Email}}>
//
// Platforms: {{.Platforms}}

package model

import "time"

// {{.Name}} is a mamba model{{with .Description}}: {{.}}{{end}}.
// It maps the {{.Table}} table.
type {{.Name}} struct {
	ID      int64
	Name    string
	Created time.Time
}

// TableName returns the database table this model maps.
func (m *{{.Name}}) TableName() string {
	return "{{.Table}}"
}
`

const viewStub = `// -*- mamba-file-type: mamba-view -*-
// Copyright (c) {{.Year}} - {{.Author}} <{{.Email}}>

package view

import (
	"html/template"
	"io"
)

// {{.Name}} is a mamba view{{with .Controller}} rendered for the {{.}} controller{{end}}.
type {{.Name}} struct {
	Template *template.Template
}

// Render writes the view to w.
func (v *{{.Name}}) Render(w io.Writer, data any) error {
	return v.Template.Execute(w, data)
}
`

const modelSQLStub = `
-- model {{.Name}}
CREATE TABLE IF NOT EXISTS {{.Table}} (
    id integer NOT NULL,
    name varchar(255),
    created timestamp,
    PRIMARY KEY(id)
);
`
