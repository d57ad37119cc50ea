package datasets

import (
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// File naming used by the encode/decode stage:
//
//	<original>/<stem>.yuv, <original>/<stem>*.info   raw input and its description
//	<decoded>/<stem>_QP<qp>.vtm_rec.yuv               decoder reconstruction
//	<decoded>/<stem>_QP<qp>.csv                       decoder block statistics trace
const (
	reconSuffix = ".vtm_rec.yuv"
	traceSuffix = ".csv"
)

var (
	qpSuffix    = regexp.MustCompile(`_QP\d+$`)
	infoWidth   = regexp.MustCompile(`(?i)width[:=\s]+(\d+)`)
	infoHeight  = regexp.MustCompile(`(?i)height[:=\s]+(\d+)`)
	infoRate    = regexp.MustCompile(`(?i)rate[:=\s]+([\d./]+)`)
	defaultRate = 30
)

// VideoInfo is the geometry and frame rate read from a .info file.
type VideoInfo struct {
	Width  int
	Height int
	FPS    int
}

// ParseInfo reads a mediainfo-style description of a raw video. Width and
// height are required; a missing frame rate defaults to 30 and fractional
// rates such as 30000/1001 are rounded.
func ParseInfo(path string) (VideoInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return VideoInfo{}, errors.Wrapf(err, "read info %s", path)
	}
	content := string(data)

	var info VideoInfo
	if info.Width, err = findInt(infoWidth, content); err != nil {
		return VideoInfo{}, errors.Wrapf(err, "%s: width", path)
	}
	if info.Height, err = findInt(infoHeight, content); err != nil {
		return VideoInfo{}, errors.Wrapf(err, "%s: height", path)
	}
	info.FPS = defaultRate
	if m := infoRate.FindStringSubmatch(content); m != nil {
		if fps, ok := parseRate(m[1]); ok {
			info.FPS = fps
		}
	}
	return info, nil
}

func findInt(re *regexp.Regexp, content string) (int, error) {
	m := re.FindStringSubmatch(content)
	if m == nil {
		return 0, errors.New("not found")
	}
	return strconv.Atoi(m[1])
}

func parseRate(s string) (int, bool) {
	num, den, isFrac := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	if isFrac {
		d, err := strconv.ParseFloat(den, 64)
		if err != nil || d == 0 {
			return 0, false
		}
		n /= d
	}
	return int(math.Round(n)), true
}

// DiscoverSources pairs every reconstruction in decodedDir with its trace,
// its original video in originalDir and the geometry from the original's
// .info file. Results are sorted by reconstruction path.
func DiscoverSources(decodedDir, originalDir string) ([]Source, error) {
	recons, err := filepath.Glob(filepath.Join(decodedDir, "*"+reconSuffix))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to glob %s", decodedDir)
	}
	if len(recons) == 0 {
		return nil, errors.Errorf("no reconstructions found in %s", decodedDir)
	}
	sort.Strings(recons)

	sources := make([]Source, 0, len(recons))
	for _, recon := range recons {
		base := strings.TrimSuffix(filepath.Base(recon), reconSuffix)
		stem := qpSuffix.ReplaceAllString(base, "")

		infos, err := filepath.Glob(filepath.Join(originalDir, stem+"*.info"))
		if err != nil || len(infos) == 0 {
			return nil, errors.Errorf("no .info file for %s in %s", stem, originalDir)
		}
		sort.Strings(infos)
		info, err := ParseInfo(infos[0])
		if err != nil {
			return nil, err
		}

		sources = append(sources, Source{
			DecodedPath:   recon,
			ReferencePath: filepath.Join(originalDir, stem+".yuv"),
			TracePath:     filepath.Join(decodedDir, base+traceSuffix),
			Width:         info.Width,
			Height:        info.Height,
		})
	}
	return sources, nil
}
