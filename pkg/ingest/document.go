package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Document is the page/block/line/word tree produced by the document digitizer
type Document struct {
	Pages []Page `json:"pages"`
}

type Page struct {
	Blocks []Block `json:"blocks"`
}

type Block struct {
	Lines []Line `json:"lines"`
}

type Line struct {
	Words []Word `json:"words"`
}

type Word struct {
	Value string `json:"value"`
}

const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["pages"],
  "properties": {
    "pages": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["blocks"],
        "properties": {
          "blocks": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["lines"],
              "properties": {
                "lines": {
                  "type": "array",
                  "items": {
                    "type": "object",
                    "required": ["words"],
                    "properties": {
                      "words": {
                        "type": "array",
                        "items": {
                          "type": "object",
                          "required": ["value"],
                          "properties": {"value": {"type": "string"}}
                        }
                      }
                    }
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("document.json", strings.NewReader(documentSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("document.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
})

// DecodeDocument validates and decodes a digitizer JSON export
func DecodeDocument(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("read document: %w", err)
	}

	schema, err := compiledSchema()
	if err != nil {
		return Document{}, err
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Document{}, fmt.Errorf("unmarshal document: %w", err)
	}
	if err := schema.Validate(raw); err != nil {
		return Document{}, fmt.Errorf("document does not match schema: %w", err)
	}

	var doc Document
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

// FlattenDocument joins the words of each line with single spaces, in reading order
func FlattenDocument(doc Document) []string {
	var lines []string
	for _, page := range doc.Pages {
		for _, block := range page.Blocks {
			for _, line := range block.Lines {
				words := make([]string, len(line.Words))
				for i, w := range line.Words {
					words[i] = w.Value
				}
				lines = append(lines, strings.Join(words, " "))
			}
		}
	}
	return lines
}
