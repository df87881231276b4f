package automatic

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/domino14/checkers/stats"
	"github.com/domino14/checkers/strategy"
)

// AnalyzeLogFile reads an autoplay move log and reports per-color move
// scores and game lengths.
func AnalyzeLogFile(filepath string) (string, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return "", err
	}
	defer file.Close()
	r := csv.NewReader(file)

	// gameID,ply,color,strategy,move,score,blackpieces,redpieces
	decided := strategy.DefaultWeights().WinScore
	scores := map[string]*stats.MoveScores{
		"black": stats.NewMoveScores(decided),
		"red":   stats.NewMoveScores(decided),
	}
	strategies := map[string]string{}
	plies := map[string]int{}
	var order []string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if record[0] == "gameID" {
			continue
		}
		if len(record) != 8 {
			return "", fmt.Errorf("bad log line %v", record)
		}
		ply, err := strconv.Atoi(record[1])
		if err != nil {
			return "", err
		}
		score, err := strconv.ParseFloat(record[5], 64)
		if err != nil {
			return "", err
		}
		if _, ok := plies[record[0]]; !ok {
			order = append(order, record[0])
		}
		plies[record[0]] = max(plies[record[0]], ply)
		color := record[2]
		st, ok := scores[color]
		if !ok {
			return "", fmt.Errorf("bad color %q", color)
		}
		strategies[color] = record[3]
		// random opening moves are logged with no score
		if score != 0 {
			st.Add(score)
		}
	}

	lengths := make([]float64, len(order))
	for i, id := range order {
		lengths[i] = float64(plies[id])
	}
	l := stats.SummarizeLengths(lengths)
	out := fmt.Sprintf("Games played: %d\n", len(order))
	out += fmt.Sprintf("Plies: mean %.2f, stdev %.2f, median %.0f\n", l.Mean, l.Stdev, l.Median)
	for _, color := range []string{"black", "red"} {
		st := scores[color]
		out += fmt.Sprintf("%v (%v) %v\n", color, strategies[color], st)
	}
	return out, nil
}
