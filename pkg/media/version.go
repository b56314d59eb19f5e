package media

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/matzehuels/glyphtools/pkg/errors"
)

// Oldest supported release and, for git builds, build date.
var (
	minVersion = [3]int{4, 4, 0}
	minDate    = [3]int{2021, 4, 8}
)

var (
	versionRE = regexp.MustCompile(`(ffmpeg|ffprobe) version n?(\d+)\.(\d+)(?:\.(\d+))?`)
	dateRE    = regexp.MustCompile(`version (\d{4})-(\d{2})-(\d{2})|version N-\d+-\w+-(\d{4})(\d{2})(\d{2})`)
)

// CheckVersion runs "<binary> -version" and fails unless the release is at
// least 4.4.0 or the build date is on or after 2021-04-08.
func (t *Tool) CheckVersion(ctx context.Context, binary string) error {
	out, err := t.run(ctx, binary, []string{"-version"}, nil)
	if err != nil {
		return err
	}
	if err := checkVersionOutput(string(out)); err != nil {
		return errors.Wrap(errors.ErrCodeExternalTool, err, "%s is too old or unrecognized", filepath.Base(binary))
	}
	t.Logger.Debug("version ok", "binary", binary)
	return nil
}

func checkVersionOutput(out string) error {
	vm := versionRE.FindStringSubmatch(out)
	dm := dateRE.FindStringSubmatch(out)
	if vm == nil && dm == nil {
		return fmt.Errorf("could not determine version")
	}
	if vm != nil {
		v := [3]int{atoi(vm[2]), atoi(vm[3]), atoi(vm[4])}
		if less(v, minVersion) {
			return fmt.Errorf("version %d.%d.%d < %d.%d.%d", v[0], v[1], v[2], minVersion[0], minVersion[1], minVersion[2])
		}
	}
	if dm != nil {
		d := [3]int{atoi(dm[1]), atoi(dm[2]), atoi(dm[3])}
		if dm[1] == "" {
			d = [3]int{atoi(dm[4]), atoi(dm[5]), atoi(dm[6])}
		}
		if less(d, minDate) {
			return fmt.Errorf("build date %04d-%02d-%02d is before %04d-%02d-%02d", d[0], d[1], d[2], minDate[0], minDate[1], minDate[2])
		}
	}
	return nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func less(a, b [3]int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
