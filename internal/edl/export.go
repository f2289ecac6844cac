package edl

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/aaronmarkham/studioproducer/internal/errs"
	"github.com/aaronmarkham/studioproducer/internal/models"
)

// Export serializes candidate into the requested deliverable format.
func Export(candidate models.EditCandidate, format models.ExportFormat) (string, error) {
	switch format {
	case models.ExportJSON:
		return toJSON(candidate)
	case models.ExportFCPXML:
		return toFCPXML(candidate), nil
	case models.ExportCMX3600:
		return toCMX3600(candidate), nil
	case models.ExportDaVinci:
		return toXMEML(candidate), nil
	case models.ExportPremiere:
		return toXMEML(candidate), nil
	default:
		return "", fmt.Errorf("%w: unsupported export format %q", errs.ErrInvalidInput, format)
	}
}

func toJSON(candidate models.EditCandidate) (string, error) {
	b, err := json.MarshalIndent(candidate, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func toFCPXML(candidate models.EditCandidate) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString("<!DOCTYPE fcpxml>\n")
	b.WriteString(`<fcpxml version="1.9">` + "\n")
	b.WriteString("  <resources>\n")
	for idx, d := range candidate.Decisions {
		fmt.Fprintf(&b, "    <asset id=\"r%d\" name=\"%s\" src=\"%s\"/>\n", idx+1, xmlEscape(d.SceneID), xmlEscape(d.VideoURL))
	}
	b.WriteString("  </resources>\n")
	b.WriteString("  <library>\n")
	b.WriteString("    <event name=\"Project\">\n")
	fmt.Fprintf(&b, "      <project name=\"%s\">\n", xmlEscape(candidate.Name))
	fmt.Fprintf(&b, "        <sequence format=\"r1\" duration=\"%gs\">\n", candidate.TotalDuration)
	b.WriteString("          <spine>\n")
	for idx, d := range candidate.Decisions {
		fmt.Fprintf(&b, "            <clip name=\"%s\" offset=\"%gs\" duration=\"%gs\" start=\"%gs\">\n",
			xmlEscape(d.SceneID), d.StartTime, d.Duration, d.InPoint)
		fmt.Fprintf(&b, "              <video ref=\"r%d\"/>\n", idx+1)
		b.WriteString("            </clip>\n")
	}
	b.WriteString("          </spine>\n")
	b.WriteString("        </sequence>\n")
	b.WriteString("      </project>\n")
	b.WriteString("    </event>\n")
	b.WriteString("  </library>\n")
	b.WriteString("</fcpxml>\n")
	return b.String()
}

// toCMX3600 renders an industry-standard CMX 3600 EDL, always at 24fps
// non-drop-frame — the format has no per-clip frame-rate field, so a
// caller working at a different rate must transcode the timeline
// before export.
func toCMX3600(candidate models.EditCandidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "TITLE: %s\n", candidate.Name)
	b.WriteString("FCM: NON-DROP FRAME\n\n")

	for idx, d := range candidate.Decisions {
		fmt.Fprintf(&b, "%03d  AX       V     C        ", idx+1)

		outPoint := d.OutPoint
		if outPoint == 0 {
			outPoint = d.Duration
		}
		sourceIn := secondsToTimecode(d.InPoint, 24)
		sourceOut := secondsToTimecode(outPoint, 24)
		recordIn := secondsToTimecode(d.StartTime, 24)
		recordOut := secondsToTimecode(d.StartTime+d.Duration, 24)

		fmt.Fprintf(&b, "%s %s %s %s\n", sourceIn, sourceOut, recordIn, recordOut)
		fmt.Fprintf(&b, "* FROM CLIP NAME: %s\n", d.SceneID)
		b.WriteString("\n")
	}

	return b.String()
}

// toXMEML renders a DaVinci Resolve / Premiere Pro compatible XMEML v5
// sequence. Premiere accepts the same structure as DaVinci for a
// simple single-track cut, so both export formats share this
// implementation.
func toXMEML(candidate models.EditCandidate) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<xmeml version="5">` + "\n")
	fmt.Fprintf(&b, "  <sequence id=\"%s\">\n", xmlEscape(candidate.CandidateID))
	fmt.Fprintf(&b, "    <name>%s</name>\n", xmlEscape(candidate.Name))
	b.WriteString("    <media>\n")
	b.WriteString("      <video>\n")
	b.WriteString("        <track>\n")
	for _, d := range candidate.Decisions {
		outPoint := d.OutPoint
		if outPoint == 0 {
			outPoint = d.Duration
		}
		b.WriteString("          <clipitem>\n")
		fmt.Fprintf(&b, "            <name>%s</name>\n", xmlEscape(d.SceneID))
		fmt.Fprintf(&b, "            <file>%s</file>\n", xmlEscape(d.VideoURL))
		fmt.Fprintf(&b, "            <in>%d</in>\n", int(d.InPoint*24))
		fmt.Fprintf(&b, "            <out>%d</out>\n", int(outPoint*24))
		b.WriteString("          </clipitem>\n")
	}
	b.WriteString("        </track>\n")
	b.WriteString("      </video>\n")
	b.WriteString("    </media>\n")
	b.WriteString("  </sequence>\n")
	b.WriteString("</xmeml>\n")
	return b.String()
}

// secondsToTimecode renders an SMPTE HH:MM:SS:FF timecode at fps.
func secondsToTimecode(seconds float64, fps int) string {
	if seconds < 0 {
		seconds = 0
	}
	totalSeconds := int(seconds)
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	secs := totalSeconds % 60
	frames := int((seconds - float64(totalSeconds)) * float64(fps))
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hours, minutes, secs, frames)
}

func xmlEscape(s string) string {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return s
	}
	return b.String()
}
