// Package stock converts piece-level inventory into box-level purchase
// units. A size is sold by the box; when stock does not divide evenly,
// the trailing partial box is still offered as one purchasable unit.
package stock

import "fmt"

// PurchasableBoxes returns how many boxes of a size can be bought given
// the pieces in stock. A trailing partial box counts as one box. A
// boxPieces of zero or less is treated as one piece per box.
func PurchasableBoxes(piecesInStock, boxPieces int) int {
	if boxPieces <= 0 {
		boxPieces = 1
	}
	if piecesInStock <= 0 {
		return 0
	}
	boxes := piecesInStock / boxPieces
	if piecesInStock%boxPieces > 0 {
		boxes++
	}
	return boxes
}

// PiecesForSelectedBoxes returns how many physical pieces a selection of
// boxes contains. Selecting the trailing partial box yields the
// remainder, so the result never exceeds piecesInStock. Selections
// outside [0, PurchasableBoxes] are rejected, not clamped.
func PiecesForSelectedBoxes(boxesSelected, boxPieces, piecesInStock int) (int, error) {
	if boxPieces <= 0 {
		boxPieces = 1
	}
	if boxesSelected < 0 {
		return 0, fmt.Errorf("invalid box selection: %d", boxesSelected)
	}
	if boxesSelected == 0 {
		return 0, nil
	}
	if piecesInStock <= 0 {
		return 0, fmt.Errorf("no stock available for a selection of %d boxes", boxesSelected)
	}
	purchasable := PurchasableBoxes(piecesInStock, boxPieces)
	if boxesSelected > purchasable {
		return 0, fmt.Errorf("selected %d boxes but only %d are purchasable", boxesSelected, purchasable)
	}
	fullBoxes := piecesInStock / boxPieces
	if boxesSelected <= fullBoxes {
		return boxesSelected * boxPieces, nil
	}
	// Trailing partial box: full boxes plus whatever pieces remain.
	return fullBoxes*boxPieces + piecesInStock%boxPieces, nil
}
