package alpha

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/claude/repcycle/internal/models"
)

var (
	// sessionDateRe matches: 2026-02-19 4:54 h
	sessionDateRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}\s+\d{1,2}:\d{2})\s+h$`)

	// exerciseRe matches: 1. Hack Squats · Machine · 8 reps[ · modifiers]
	exerciseRe = regexp.MustCompile(`^(\d+)\.\s+(.+)$`)

	// repsRe matches the "8 reps" part of an exercise header.
	repsRe = regexp.MustCompile(`^(\d+)\s+reps$`)

	// warmupRe matches: WU1 · 37,5 kg · 9 reps
	warmupRe = regexp.MustCompile(`WU(\d+)\s+·\s+(.+?)\s+kg\s+·\s+(\d+)\s+reps`)
)

// Parse reads an Alpha Progression CSV export and returns parsed sessions.
// Lines that match none of the known shapes are skipped.
func Parse(r io.Reader) ([]models.AlphaSession, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var sessions []models.AlphaSession
	var current *models.AlphaSession
	var exercise *models.AlphaExercise

	flushExercise := func() {
		if current != nil && exercise != nil {
			current.Exercises = append(current.Exercises, *exercise)
		}
		exercise = nil
	}
	flushSession := func() {
		flushExercise()
		if current != nil {
			sessions = append(sessions, *current)
		}
		current = nil
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV: %w", err)
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}

		switch {
		case isColumnHeader(rec):
			continue

		case len(rec) == 3 && sessionDateRe.MatchString(rec[1]):
			flushSession()
			started, err := parseSessionDate(sessionDateRe.FindStringSubmatch(rec[1])[1])
			if err != nil {
				return nil, err
			}
			current = &models.AlphaSession{Title: rec[0], StartedAt: started, Duration: rec[2]}

		case exerciseRe.MatchString(rec[0]):
			if current == nil {
				return nil, fmt.Errorf("exercise without session: %q", rec[0])
			}
			flushExercise()
			ex, err := parseExercise(rec[0])
			if err != nil {
				return nil, err
			}
			if len(rec) > 1 {
				ex.Warmups = parseWarmups(rec[1])
			}
			exercise = &ex

		case len(rec) == 4 && isInt(rec[0]):
			if exercise == nil {
				return nil, fmt.Errorf("set data without exercise: %q", strings.Join(rec, ";"))
			}
			set, err := parseSet(rec)
			if err != nil {
				return nil, err
			}
			exercise.Sets = append(exercise.Sets, set)
		}
	}
	flushSession()

	return sessions, nil
}

func isColumnHeader(rec []string) bool {
	return len(rec) == 4 && rec[0] == "#" && strings.EqualFold(rec[1], "KG")
}

func isInt(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

// parseSessionDate parses "2026-02-19 4:54" as UTC.
func parseSessionDate(s string) (time.Time, error) {
	s = strings.Join(strings.Fields(s), " ")
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02 3:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse session date %q", s)
}

// parseExercise splits "1. Sumo Squats · Smith machine · 10 reps · 2 dropsets"
// into position, name, equipment and target reps.
func parseExercise(s string) (models.AlphaExercise, error) {
	m := exerciseRe.FindStringSubmatch(s)
	pos, _ := strconv.Atoi(m[1])
	parts := strings.Split(m[2], "·")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	repsAt := -1
	for i := 1; i < len(parts); i++ {
		if repsRe.MatchString(parts[i]) {
			repsAt = i
			break
		}
	}
	if repsAt < 0 {
		return models.AlphaExercise{}, fmt.Errorf("exercise header without target reps: %q", s)
	}
	reps, _ := strconv.Atoi(repsRe.FindStringSubmatch(parts[repsAt])[1])

	return models.AlphaExercise{
		Position:   pos,
		Name:       parts[0],
		Equipment:  strings.Join(parts[1:repsAt], " · "),
		TargetReps: reps,
	}, nil
}

// parseWarmups extracts warmup sets from the warmup info string.
// Example: "WU1 · 37,5 kg · 9 reps<br>WU2 · 72,5 kg · 7 reps"
func parseWarmups(s string) []models.AlphaSet {
	var sets []models.AlphaSet
	for _, part := range strings.Split(s, "<br>") {
		m := warmupRe.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		weight, isBW := parseWeight(m[2])
		reps, _ := strconv.Atoi(m[3])
		sets = append(sets, models.AlphaSet{
			Number:         num,
			WeightKg:       weight,
			BodyweightPlus: isBW,
			Reps:           reps,
		})
	}
	return sets
}

// parseSet reads a "1;115;8;1" row. An empty RIR column stays nil.
func parseSet(rec []string) (models.AlphaSet, error) {
	num, _ := strconv.Atoi(rec[0])
	weight, isBW := parseWeight(rec[1])
	reps, err := strconv.Atoi(rec[2])
	if err != nil {
		return models.AlphaSet{}, fmt.Errorf("set %d: invalid reps %q", num, rec[2])
	}
	set := models.AlphaSet{Number: num, WeightKg: weight, BodyweightPlus: isBW, Reps: reps}
	if rec[3] != "" {
		rir := int(math.Round(parseEuropeanFloat(rec[3])))
		set.RIR = &rir
	}
	return set, nil
}

// parseWeight handles European decimals and bodyweight-plus notation.
// "+35" -> (35, true), "102,5" -> (102.5, false), "+0" -> (0, true)
func parseWeight(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "+") {
		return parseEuropeanFloat(s[1:]), true
	}
	return parseEuropeanFloat(s), false
}

// parseEuropeanFloat converts a European decimal string to float64.
// "102,5" -> 102.5, "0,5" -> 0.5
func parseEuropeanFloat(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
