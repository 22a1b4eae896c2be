// Trackatlas - GPS Activity Maps and Tile Exploration
// Copyright 2026 H. Becker (hbecker)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hbecker/trackatlas

package render

import (
	"fmt"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Font sizes in points, chosen for a 1000x1000 canvas.
const (
	labelFontSize       = 36
	dataFontSize        = 48
	attributionFontSize = 12
)

// FontSet holds the faces used on a composed map.
type FontSet struct {
	Label       font.Face
	Data        font.Face
	Attribution font.Face
}

// LoadFonts parses the configured label and data fonts and derives the
// three faces the compositor needs. Empty paths fall back to the
// bundled Go fonts, so a zero config always produces a usable set.
func LoadFonts(labelPath, dataPath string) (*FontSet, error) {
	labelFont, err := loadFont(labelPath, goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("label font: %w", err)
	}
	dataFont, err := loadFont(dataPath, gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("data font: %w", err)
	}

	return &FontSet{
		Label:       truetype.NewFace(labelFont, &truetype.Options{Size: labelFontSize}),
		Data:        truetype.NewFace(dataFont, &truetype.Options{Size: dataFontSize}),
		Attribution: truetype.NewFace(labelFont, &truetype.Options{Size: attributionFontSize}),
	}, nil
}

func loadFont(path string, fallback []byte) (*truetype.Font, error) {
	data := fallback
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		data = b
	}
	return truetype.Parse(data)
}
