//go:build mage

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// exportFile is the JSON envelope written by generate.
var exportFile = filepath.Join("output", "banking_faqs.json")

// Validate re-validates the last generated export.
func Validate() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "validate", exportFile)
}

// Import stores the last generated export in the knowledge base.
func Import() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "knowledge", "import", exportFile)
}

// Index pushes the last generated export to Elasticsearch.
func Index() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "index", exportFile)
}
