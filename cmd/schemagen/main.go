// Copyright 2025 The Leakrun Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command schemagen writes the JSON schema of the scan result document.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/leakrun/leakrun/report"
)

var directory string

func init() {
	flag.StringVar(&directory, "dir", "schemas", "Directory to store the generated schemas")
	flag.Parse()
}

func main() {
	schema := report.Document{}.Schema()
	schemaJson, err := schema.MarshalJSON()
	if err != nil {
		log.Fatal(err)
	}

	var indented bytes.Buffer
	if err := json.Indent(&indented, schemaJson, "", "  "); err != nil {
		log.Fatal("Error indenting JSON schema:", err)
	}

	if err := os.MkdirAll(directory, 0o755); err != nil {
		log.Fatal(err)
	}

	path := fmt.Sprintf("%s/scan-result.json", directory)
	log.Printf("Writing schema for the scan result document to %s", path)
	if err := os.WriteFile(path, indented.Bytes(), 0o644); err != nil {
		log.Fatal("Error writing to file:", err)
	}
}
