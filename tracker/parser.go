package tracker

import (
	"image"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"pokerlens.com/tracker/ocr"
	"pokerlens.com/tracker/screen"
	"pokerlens.com/tracker/util"
)

var cardTokenPattern = regexp.MustCompile(`^(10|[2-9TJQKA])[shdc]$`)

// TableParser reconstructs a TableSnapshot from one captured frame by
// applying the region map and running recognition per field.
type TableParser struct {
	ocrService          ocr.Service
	recognizer          *ActionRecognizer
	tableSize           screen.TableSize
	tableRegions        screen.TableRegions
	confidenceThreshold float64
	logger              *zerolog.Logger
}

func NewTableParser(
	ocrService ocr.Service,
	recognizer *ActionRecognizer,
	tableSize screen.TableSize,
	confidenceThreshold float64,
	logger *zerolog.Logger) (*TableParser, error) {

	// Fail now, not per frame, when a table size has no region map.
	for seatNo := uint32(0); seatNo < tableSize.NumSeats(); seatNo++ {
		if _, err := screen.GetSeatRegions(tableSize, seatNo); err != nil {
			return nil, errors.Wrapf(err, "Incomplete region map for %s", tableSize)
		}
	}
	tableRegions, err := screen.GetTableRegions(tableSize)
	if err != nil {
		return nil, errors.Wrapf(err, "No table-level region map for %s", tableSize)
	}

	return &TableParser{
		ocrService:          ocrService,
		recognizer:          recognizer,
		tableSize:           tableSize,
		tableRegions:        tableRegions,
		confidenceThreshold: confidenceThreshold,
		logger:              logger,
	}, nil
}

// ParseTable reads every seat plus the table-level pot, board, and
// dealer-marker regions from one frame. Numeric fields are only read
// for occupied seats; OCR on an empty seat returns garbage that would
// poison the stats, and the skipped calls are the bulk of the frame
// cost anyway.
func (p *TableParser) ParseTable(tableImage image.Image, tableWidth int, tableHeight int) *TableSnapshot {
	seats := make(map[uint32]SeatInfo, p.tableSize.NumSeats())

	for seatNo := uint32(0); seatNo < p.tableSize.NumSeats(); seatNo++ {
		seatRegions, err := screen.GetSeatRegions(p.tableSize, seatNo)
		if err != nil {
			// Verified complete at construction.
			continue
		}

		nameResult := p.ocrService.ReadText(tableImage, toRect(seatRegions.PlayerName, tableWidth, tableHeight))
		playerName := ""
		if nameResult.Confidence > p.confidenceThreshold {
			playerName = strings.TrimSpace(nameResult.Text)
		} else if nameResult.Text != "" {
			util.Metrics.LowConfidenceRead()
		}

		sittingOut := false
		lowerName := strings.ToLower(playerName)
		if strings.Contains(lowerName, "sitting out") || strings.Contains(lowerName, "sit out") {
			sittingOut = true
			playerName = ""
		}

		isOccupied := ocr.IsValidPlayerName(playerName)

		stackSize := 0.0
		currentBet := 0.0
		if isOccupied {
			stackResult := p.ocrService.ReadNumber(tableImage, toRect(seatRegions.StackSize, tableWidth, tableHeight))
			stackSize = util.ClampNonNegative(p.recognizer.ParseAmount(stackResult.Text))

			betResult := p.ocrService.ReadNumber(tableImage, toRect(seatRegions.BetAmount, tableWidth, tableHeight))
			currentBet = util.ClampNonNegative(p.recognizer.ParseAmount(betResult.Text))
		}

		seats[seatNo] = SeatInfo{
			SeatNo:       seatNo,
			PlayerName:   playerName,
			StackSize:    stackSize,
			IsOccupied:   isOccupied,
			HasCards:     isOccupied && !sittingOut,
			CurrentBet:   currentBet,
			IsSittingOut: sittingOut,
		}
	}

	potSize := p.readPot(tableImage, tableWidth, tableHeight)
	board := p.readBoard(tableImage, tableWidth, tableHeight)
	dealerPos := p.readDealerPos(tableImage, tableWidth, tableHeight)

	if dealerPos >= 0 {
		seats = AssignPositions(seats, dealerPos, p.tableSize.NumSeats())
	}

	street, _ := StreetFromCardCount(len(board))

	return &TableSnapshot{
		Timestamp:      time.Now(),
		Seats:          seats,
		DealerPos:      dealerPos,
		PotSize:        potSize,
		CurrentStreet:  street,
		CommunityCards: board,
	}
}

// ReadActionText reads one seat's action-text region. Called lazily by
// the diffing step, only after a bet/stack delta fired for that seat.
func (p *TableParser) ReadActionText(tableImage image.Image, tableWidth int, tableHeight int, seatNo uint32) string {
	seatRegions, err := screen.GetSeatRegions(p.tableSize, seatNo)
	if err != nil {
		return ""
	}
	result := p.ocrService.ReadText(tableImage, toRect(seatRegions.ActionText, tableWidth, tableHeight))
	if result.Confidence <= p.confidenceThreshold {
		return ""
	}
	return p.recognizer.NormalizeActionText(result.Text)
}

func (p *TableParser) readPot(tableImage image.Image, tableWidth int, tableHeight int) float64 {
	result := p.ocrService.ReadNumber(tableImage, toRect(p.tableRegions.Pot, tableWidth, tableHeight))
	return util.ClampNonNegative(p.recognizer.ParseAmount(result.Text))
}

func (p *TableParser) readBoard(tableImage image.Image, tableWidth int, tableHeight int) []string {
	var board []string
	for _, slot := range p.tableRegions.Board {
		result := p.ocrService.ReadText(tableImage, toRect(slot, tableWidth, tableHeight))
		card, ok := normalizeCardToken(result.Text)
		if !ok {
			// Board slots fill left to right; the first empty slot
			// ends the board.
			break
		}
		board = append(board, card)
	}
	return board
}

func (p *TableParser) readDealerPos(tableImage image.Image, tableWidth int, tableHeight int) int {
	for seatNo, marker := range p.tableRegions.DealerMarkers {
		result := p.ocrService.ReadText(tableImage, toRect(marker, tableWidth, tableHeight))
		text := strings.TrimSpace(result.Text)
		if text == "D" || text == "d" || text == "0" {
			return seatNo
		}
	}
	return -1
}

func normalizeCardToken(text string) (string, bool) {
	text = strings.ReplaceAll(text, " ", "")
	if len(text) < 2 {
		return "", false
	}
	// Rank upper, suit lower: "ah" and "AH" both become "Ah".
	rank := strings.ToUpper(text[:len(text)-1])
	suit := strings.ToLower(text[len(text)-1:])
	card := rank + suit
	if !cardTokenPattern.MatchString(card) {
		return "", false
	}
	return card, true
}

func toRect(region screen.RegionCoords, tableWidth int, tableHeight int) image.Rectangle {
	x, y, w, h := region.ToAbsolute(tableWidth, tableHeight)
	return image.Rect(x, y, x+w, y+h)
}

// frameMerger applies the carry-forward policy: a field that fails to
// parse in one frame keeps its previous known-good value instead of
// being zeroed, so a single bad frame cannot fake a new-hand or street
// trigger. Two consecutive misses accept the new reading.
type frameMerger struct {
	seatMisses  map[uint32]int
	potMisses   int
	boardMisses int
}

func newFrameMerger() *frameMerger {
	return &frameMerger{
		seatMisses: make(map[uint32]int),
	}
}

func (m *frameMerger) Merge(prev *TableSnapshot, curr *TableSnapshot) *TableSnapshot {
	if prev == nil {
		return curr
	}

	merged := &TableSnapshot{
		Timestamp:      curr.Timestamp,
		Seats:          copySeats(curr.Seats),
		DealerPos:      curr.DealerPos,
		PotSize:        curr.PotSize,
		CurrentStreet:  curr.CurrentStreet,
		CommunityCards: copyCards(curr.CommunityCards),
	}

	for seatNo, currSeat := range merged.Seats {
		prevSeat, hadSeat := prev.Seats[seatNo]
		if currSeat.IsOccupied {
			m.seatMisses[seatNo] = 0
			continue
		}
		if hadSeat && prevSeat.IsOccupied && m.seatMisses[seatNo] == 0 {
			// One unreadable frame; keep the seat alive.
			merged.Seats[seatNo] = prevSeat
		}
		m.seatMisses[seatNo]++
	}

	// A pot that reads zero while the previous frame had chips in it is
	// far more often a failed read than a real reset; give it one frame
	// of grace. A real new hand also moves the button or clears the
	// board, so the other heuristics still fire.
	if curr.PotSize == 0 && prev.PotSize > 0 && m.potMisses == 0 {
		merged.PotSize = prev.PotSize
		m.potMisses++
	} else {
		m.potMisses = 0
	}

	if len(curr.CommunityCards) == 0 && len(prev.CommunityCards) > 0 && m.boardMisses == 0 {
		merged.CommunityCards = copyCards(prev.CommunityCards)
		merged.CurrentStreet = prev.CurrentStreet
		m.boardMisses++
	} else {
		m.boardMisses = 0
	}

	// The dealer marker is small and frequently unreadable; carry the
	// last known position until a marker is seen again.
	if curr.DealerPos < 0 {
		merged.DealerPos = prev.DealerPos
	}

	return merged
}
