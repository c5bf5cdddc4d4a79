// Package foldxtest provides a stand-in FoldX binary for tests.
//
// The fake understands both packagings. RepairPDB copies the input to
// <stem>_Repair.pdb; Stability writes a single-row report whose energetic
// components are base, base+1, ... where base is the first word of the
// model file. A model whose second word is fail-repair, fail-stability,
// skip-repair or garbage makes the matching step fail, leave no artifact,
// or write an unparseable report.
package foldxtest

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

const script = `#!/bin/sh
cmd=""
pdb=""
if [ "$1" = "-f" ]; then
	cmd=$(sed -n 's/^command=//p' "$2")
	pdb=$(sed -n 's/^pdb=//p' "$2")
else
	for a in "$@"; do
		case "$a" in
		--command=*) cmd="${a#--command=}" ;;
		--pdb=*) pdb="${a#--pdb=}" ;;
		esac
	done
fi
[ -f "$pdb" ] || { echo "no such pdb: $pdb" >&2; exit 3; }
stem="${pdb%.pdb}"
mode=$(awk 'NR==1{print $2}' "$pdb")
echo "fake foldx $cmd $pdb"
case "$cmd" in
RepairPDB)
	[ "$mode" = "fail-repair" ] && exit 1
	[ "$mode" = "skip-repair" ] && exit 0
	cp "$pdb" "${stem}_Repair.pdb"
	;;
Stability)
	[ "$mode" = "fail-stability" ] && exit 1
	if [ "$mode" = "garbage" ]; then
		echo "not a report" > "${stem}_0_ST.fxout"
		exit 0
	fi
	awk -v name="./${stem}.pdb" 'NR==1{b=$1; printf "%s", name; for(i=0;i<22;i++) printf "\t%s", b+i; printf "\t120\t\n"}' "$pdb" > "${stem}_0_ST.fxout"
	;;
*)
	echo "unknown command $cmd" >&2
	exit 2
	;;
esac
`

// WriteBinary writes the fake FoldX into dir and returns its path.
func WriteBinary(t testing.TB, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "foldx")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("writing fake foldx: %v", err)
	}
	return path
}

// WriteModel writes a model file understood by the fake binary. mode may
// be empty.
func WriteModel(t testing.TB, dir, name string, base float64, mode string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	content := fmt.Sprintf("%g %s\nATOM      1  CA  ALA A   1\n", base, mode)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing model %s: %v", name, err)
	}
	return path
}
