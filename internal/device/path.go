package device

import (
	"strconv"
	"strings"

	kqterrors "github.com/kunquat/kqsynth/internal/errors"
)

// Level distinguishes the global connection graph from an audio-unit's
// internal subgraph; each has its own port-participation rules.
type Level int

const (
	LevelGlobal Level = iota
	LevelAudioUnitInternal
)

// Direction is which side of an edge the path names.
type Direction int

const (
	DirSource Direction = iota
	DirDest
)

// PathInfo is the parsed shape of a connection endpoint name.
type PathInfo struct {
	AudioUnit    string // "au_XX" prefix, or "" if none
	ProcessorDir string // "proc_XX" prefix, or "" if none
	IsInput      bool
	Port         int
}

// ValidateConnectionPath parses a name of shape
// "[au_XX/][proc_XX/C/](in_XX|out_XX)" and returns its parsed form or an
// error, per spec.md §4.5.
func ValidateConnectionPath(path string, level Level, dir Direction) (PathInfo, error) {
	if path == "" {
		// Master: can only send via in_* and receive via out_*; the empty
		// path alone (no port suffix) is invalid here, callers pass the
		// full "in_XX"/"out_XX" suffix for master ports.
		return PathInfo{}, pathErr(path, "empty path")
	}
	segs := strings.Split(path, "/")
	var info PathInfo
	i := 0
	if i < len(segs) && strings.HasPrefix(segs[i], "au_") {
		if _, err := hexByte(segs[i][3:]); err != nil {
			return PathInfo{}, pathErr(path, "bad audio unit index")
		}
		info.AudioUnit = segs[i]
		i++
	}
	if i < len(segs) && strings.HasPrefix(segs[i], "proc_") {
		if i+1 >= len(segs) || segs[i+1] != "C" {
			return PathInfo{}, pathErr(path, "processor path missing parameter directory 'C'")
		}
		idx := segs[i][5:]
		if _, err := hexByte(idx); err != nil {
			return PathInfo{}, pathErr(path, "bad processor index")
		}
		info.ProcessorDir = segs[i]
		i += 2
	}
	if i >= len(segs) {
		return PathInfo{}, pathErr(path, "missing port segment")
	}
	portSeg := segs[i]
	i++
	if i != len(segs) {
		return PathInfo{}, pathErr(path, "trailing segments after port")
	}

	switch {
	case strings.HasPrefix(portSeg, "in_"):
		info.IsInput = true
		port, err := hexByte(portSeg[3:])
		if err != nil {
			return PathInfo{}, pathErr(path, "bad input port number")
		}
		info.Port = port
	case strings.HasPrefix(portSeg, "out_"):
		info.IsInput = false
		port, err := hexByte(portSeg[4:])
		if err != nil {
			return PathInfo{}, pathErr(path, "bad output port number")
		}
		info.Port = port
	default:
		return PathInfo{}, pathErr(path, "port segment must start with in_ or out_")
	}

	if level == LevelGlobal {
		isMaster := info.AudioUnit == "" && info.ProcessorDir == ""
		// At the global level only the master node and audio units connect
		// directly; bare processor paths (no au_XX prefix) never participate
		// — processors are only reachable inside their audio unit's internal
		// graph (LevelAudioUnitInternal).
		participates := isMaster || info.AudioUnit != ""
		if !participates {
			return PathInfo{}, pathErr(path, "path does not participate at the global level")
		}
	}

	return info, nil
}

func hexByte(s string) (int, error) {
	if len(s) != 2 {
		return 0, kqterrors.Newf("port number must be two hex digits").Build()
	}
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0, err
	}
	if int(v) >= MaxPorts {
		return 0, kqterrors.Newf("port number %d out of range", v).Build()
	}
	return int(v), nil
}

func pathErr(path, reason string) error {
	return kqterrors.Newf("invalid connection path %q: %s", path, reason).
		Component("device").Category(kqterrors.CategoryFormat).Context("path", path).Build()
}
