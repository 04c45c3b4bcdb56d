package extractor

import (
	"encoding/json"
	"strings"
)

// ImageIndexAttr tags every extracted img element with its reference index.
const ImageIndexAttr = "data-image-index"

// ImageReference describes one embedded image before any network fetch.
// Index is dense within one Process call and follows document order.
type ImageReference struct {
	Index           int    `json:"index"`
	SourceURL       string `json:"sourceUrl"`
	AltText         string `json:"altText"`
	Caption         string `json:"caption"`
	OriginalAltText string `json:"originalAltText"`
	OriginalCaption string `json:"originalCaption"`
}

type NodeKind string

const (
	KindHeading   NodeKind = "heading"
	KindParagraph NodeKind = "paragraph"
	KindList      NodeKind = "list"
	KindQuote     NodeKind = "quote"
	KindCode      NodeKind = "code"
	KindImage     NodeKind = "image"
	KindTable     NodeKind = "table"
)

// StructureNode is a closed set of block classifications. Only types in this
// package implement it.
type StructureNode interface {
	Kind() NodeKind
	structureNode()
}

type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

type Paragraph struct {
	Text string `json:"text"`
}

type List struct {
	Ordered bool     `json:"ordered"`
	Items   []string `json:"items"`
}

type Quote struct {
	Text string `json:"text"`
}

type Code struct {
	Text string `json:"text"`
}

type Image struct {
	Index   int    `json:"index"`
	Src     string `json:"src"`
	AltText string `json:"altText"`
	Caption string `json:"caption"`
}

type Cell struct {
	Text    string `json:"text"`
	Colspan int    `json:"colspan"`
	Rowspan int    `json:"rowspan"`
}

type Table struct {
	Caption string   `json:"caption"`
	Headers []string `json:"headers"`
	Rows    [][]Cell `json:"rows"`
}

func (Heading) Kind() NodeKind   { return KindHeading }
func (Paragraph) Kind() NodeKind { return KindParagraph }
func (List) Kind() NodeKind      { return KindList }
func (Quote) Kind() NodeKind     { return KindQuote }
func (Code) Kind() NodeKind      { return KindCode }
func (Image) Kind() NodeKind     { return KindImage }
func (Table) Kind() NodeKind     { return KindTable }

func (Heading) structureNode()   {}
func (Paragraph) structureNode() {}
func (List) structureNode()      {}
func (Quote) structureNode()     {}
func (Code) structureNode()      {}
func (Image) structureNode()     {}
func (Table) structureNode()     {}

// The MarshalJSON methods add a "type" discriminator next to the node fields.

func (n Heading) MarshalJSON() ([]byte, error) {
	type alias Heading
	return json.Marshal(struct {
		Type NodeKind `json:"type"`
		alias
	}{n.Kind(), alias(n)})
}

func (n Paragraph) MarshalJSON() ([]byte, error) {
	type alias Paragraph
	return json.Marshal(struct {
		Type NodeKind `json:"type"`
		alias
	}{n.Kind(), alias(n)})
}

func (n List) MarshalJSON() ([]byte, error) {
	type alias List
	return json.Marshal(struct {
		Type NodeKind `json:"type"`
		alias
	}{n.Kind(), alias(n)})
}

func (n Quote) MarshalJSON() ([]byte, error) {
	type alias Quote
	return json.Marshal(struct {
		Type NodeKind `json:"type"`
		alias
	}{n.Kind(), alias(n)})
}

func (n Code) MarshalJSON() ([]byte, error) {
	type alias Code
	return json.Marshal(struct {
		Type NodeKind `json:"type"`
		alias
	}{n.Kind(), alias(n)})
}

func (n Image) MarshalJSON() ([]byte, error) {
	type alias Image
	return json.Marshal(struct {
		Type NodeKind `json:"type"`
		alias
	}{n.Kind(), alias(n)})
}

func (n Table) MarshalJSON() ([]byte, error) {
	type alias Table
	return json.Marshal(struct {
		Type NodeKind `json:"type"`
		alias
	}{n.Kind(), alias(n)})
}

// ProcessedContent is the per-item result handed to exporters.
type ProcessedContent struct {
	HTML      string           `json:"html"`
	PlainText string           `json:"plainText"`
	Images    []ImageReference `json:"images"`
	Structure []StructureNode  `json:"structure"`
}

// WordCount counts whitespace separated words of the plain text.
func (p ProcessedContent) WordCount() int {
	return len(strings.Fields(p.PlainText))
}
