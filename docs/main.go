package main

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/Lattice-Automation/blastkit/internal/cmd"

	"github.com/spf13/cobra/doc"
)

// https://pmarsceill.github.io/just-the-docs/docs/navigation-structure/
const rootCmd = `---
layout: default
title: %s
nav_order: %d
has_children: true
permalink: /blastkit
---
`

// child command without children
const childCmd = `---
layout: default
title: %s
parent: %s
nav_order: %d
---
`

// child with children
const childParentCmd = `---
layout: default
title: %s
parent: %s
nav_order: %d
has_children: true
---
`

// grandchildren
const grandchildCmd = `---
layout: default
title: %s
parent: %s
grand_parent: %s
nav_order: %d
---
`

// docType codes whether the command is a grandchild, child, etc
type docType int

const (
	root docType = iota
	child
	childParent
	grandchild
)

// meta is for describing the position/info for a command doc page
type meta struct {
	docType     docType
	title       string
	navOrder    int
	hasChildren bool
	parent      string
	grandParent string
}

// map from the base Markdown file name to its build meta
var metaMap = map[string]meta{
	"blastkit":                   {root, "blastkit", 0, true, "", ""},
	"blastkit_install":           {child, "install", 0, false, "blastkit", ""},
	"blastkit_search":            {child, "search", 1, false, "blastkit", ""},
	"blastkit_defaults":          {child, "defaults", 2, false, "blastkit", ""},
	"blastkit_database":          {childParent, "database", 3, true, "blastkit", ""},
	"blastkit_database_make":     {grandchild, "make", 0, false, "database", "blastkit"},
	"blastkit_database_download": {grandchild, "download", 1, false, "database", "blastkit"},
	"blastkit_database_list":     {grandchild, "list", 2, false, "database", "blastkit"},
	"blastkit_database_delete":   {grandchild, "delete", 3, false, "database", "blastkit"},
	"blastkit_fetch":             {childParent, "fetch", 4, true, "blastkit", ""},
	"blastkit_fetch_add":         {grandchild, "add", 0, false, "fetch", "blastkit"},
}

// makeDocs parses the custom commands and outputs Markdown documentation files
func makeDocs() {
	if err := doc.GenMarkdownTreeCustom(cmd.RootCmd, ".", filePrepender, linkHandler); err != nil {
		fmt.Println(err.Error())
	}
}

// filePrepender adds YAML headings that are required by the just-the-docs theme
// https://github.com/spf13/cobra/blob/master/doc/md_docs.md
// https://pmarsceill.github.io/just-the-docs/docs/navigation-structure/
func filePrepender(filename string) string {
	name := filepath.Base(filename)
	base := strings.TrimSuffix(name, path.Ext(name))
	m := metaMap[base]

	switch m.docType {
	case root:
		return fmt.Sprintf(rootCmd, m.title, m.navOrder)
	case child:
		return fmt.Sprintf(childCmd, m.title, m.parent, m.navOrder)
	case childParent:
		return fmt.Sprintf(childParentCmd, m.title, m.parent, m.navOrder)
	case grandchild:
		return fmt.Sprintf(grandchildCmd, m.title, m.parent, m.grandParent, m.navOrder)
	}

	return ""
}

// linkHandler returns the URL to a documentation page
func linkHandler(filename string) string {
	name := filepath.Base(filename)
	base := strings.TrimSuffix(name, path.Ext(name))
	return base
}

func main() {
	makeDocs()
}
