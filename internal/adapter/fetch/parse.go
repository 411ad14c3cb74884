package fetch

import (
	"regexp"
	"strconv"

	"relaybot/internal/progress"
)

// The accelerators emit progress as free text on their diagnostic streams.
// Parsing is best effort by design: a line that does not match simply
// yields no update, it never fails the download.

// aria2c summary lines look like:
//
//	[#2089b0 400KiB/33MiB(1%) CN:1 DL:115KiB ETA:4m51s]
var aria2Line = regexp.MustCompile(`\[#[0-9a-f]+\s+([\d.]+)((?:[KMGT]i)?B)/([\d.]+)((?:[KMGT]i)?B)\((\d{1,3})%\)(?:.*?DL:([\d.]+)((?:[KMGT]i)?B))?`)

// wget dot-progress lines on stderr look like:
//
//	  3250K .......... .......... .......... .......... ..........  6% 1.66M 28s
var wgetLine = regexp.MustCompile(`^\s*(\d+)K[\s.]+(\d{1,3})%\s+([\d.]+)([KMG])?`)

// parseAria2 extracts a progress update from one aria2c summary line.
func parseAria2(line string) (progress.Update, bool) {
	m := aria2Line.FindStringSubmatch(line)
	if m == nil {
		return progress.Update{}, false
	}

	done, ok1 := parseSize(m[1], m[2])
	total, ok2 := parseSize(m[3], m[4])
	pct, err := strconv.ParseFloat(m[5], 64)
	if !ok1 || !ok2 || err != nil {
		return progress.Update{}, false
	}

	u := progress.Update{
		Percent: pct,
		Done:    int64(done),
		Total:   int64(total),
	}
	if m[6] != "" {
		if speed, ok := parseSize(m[6], m[7]); ok {
			u.Speed = speed
		}
	}
	return u, true
}

// parseWget extracts a progress update from one wget dot-progress line.
func parseWget(line string) (progress.Update, bool) {
	m := wgetLine.FindStringSubmatch(line)
	if m == nil {
		return progress.Update{}, false
	}

	doneKiB, err1 := strconv.ParseFloat(m[1], 64)
	pct, err2 := strconv.ParseFloat(m[2], 64)
	if err1 != nil || err2 != nil {
		return progress.Update{}, false
	}

	u := progress.Update{
		Percent: pct,
		Done:    int64(doneKiB * 1024),
	}
	if pct > 0 {
		u.Total = int64(float64(u.Done) / pct * 100)
	}
	if speed, ok := parseSize(m[3], m[4]); ok {
		u.Speed = speed
	}
	return u, true
}

// parseSize converts a number with an optional binary unit suffix to bytes.
// Bare K/M/G suffixes (wget speeds) are treated as binary multiples too.
func parseSize(num, unit string) (float64, bool) {
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	switch unit {
	case "", "B":
		return v, true
	case "K", "KiB":
		return v * 1024, true
	case "M", "MiB":
		return v * 1024 * 1024, true
	case "G", "GiB":
		return v * 1024 * 1024 * 1024, true
	case "T", "TiB":
		return v * 1024 * 1024 * 1024 * 1024, true
	}
	return 0, false
}
