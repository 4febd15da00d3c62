// Package diag implements read-only consistency checking over a mounted
// FAT16 volume. It is never called from a mutating filesystem operation:
// it walks the tree fresh on every Check, exactly the way fsck tooling in
// the broader FAT ecosystem re-derives its view of allocation state
// rather than trusting a cached map.
package diag

import (
	"github.com/boljen/go-bitmap"

	"github.com/fat16os/fat16os/internal/fat"
)

// CrossLinkedEntry names a directory entry whose chain overlaps another
// entry's chain at the noted cluster.
type CrossLinkedEntry struct {
	Path     string
	Name     string
	Cluster  uint16
	Original string // path+name of the entry that first claimed Cluster
}

// Report summarizes one consistency pass, corresponding to Testable
// Properties 1, 2, 4 and 6.
type Report struct {
	FreeClusters uint32
	UsedClusters uint32
	CrossLinked  []CrossLinkedEntry
}

// owners records, per cluster, which directory entry first claimed it, so
// a later cross-link report can name both claimants without a full
// union-find.
type walker struct {
	v       *fat.Volume
	claimed bitmap.Bitmap
	owners  map[uint16]string
	report  Report
}

// Check walks every reachable directory and its files' cluster chains,
// building a fresh ownership bitmap (per §4.2's diagnostics extension) and
// reporting any cluster claimed by more than one chain.
func Check(v *fat.Volume) (Report, error) {
	g := v.Geometry()
	total := g.ClusterCount + 2

	w := &walker{
		v:       v,
		claimed: bitmap.New(int(total)),
		owners:  make(map[uint16]string),
	}

	if err := w.walkDir(0, "/"); err != nil {
		return Report{}, err
	}

	free, used, err := w.countFATUsage()
	if err != nil {
		return Report{}, err
	}
	w.report.FreeClusters = free
	w.report.UsedClusters = used

	return w.report, nil
}

// walkDir visits dirCluster's entries, claiming each file's chain and
// recursing into subdirectories (skipping "." and "..").
func (w *walker) walkDir(dirCluster uint16, path string) error {
	entries, err := w.listDir(dirCluster)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if e.Name() == "." || e.Name() == ".." {
			continue
		}

		w.claimChain(e.Cluster(), path, e.Name())

		if e.IsDir() {
			childPath := path + e.Name() + "/"
			if path == "/" {
				childPath = "/" + e.Name() + "/"
			}
			if err := w.walkDir(e.Cluster(), childPath); err != nil {
				return err
			}
		}
	}
	return nil
}

// claimChain walks a cluster chain via the volume's exported chain walker
// and marks every cluster in the diagnostic bitmap, recording a
// cross-link if a cluster was already claimed by a different entry.
func (w *walker) claimChain(start uint16, path, name string) {
	if start < 2 {
		return
	}

	for _, cluster := range w.v.ChainClusters(start) {
		idx := int(cluster)
		if w.claimed.Get(idx) {
			w.report.CrossLinked = append(w.report.CrossLinked, CrossLinkedEntry{
				Path:     path,
				Name:     name,
				Cluster:  cluster,
				Original: w.owners[cluster],
			})
			continue
		}
		w.claimed.Set(idx, true)
		w.owners[cluster] = path + name
	}
}

// listDir adapts fat.Volume's Ls-style scan to work against an arbitrary
// cluster rather than only the current directory, via fat.Volume.ScanDirRaw.
func (w *walker) listDir(dirCluster uint16) ([]fat.DiagEntry, error) {
	return w.v.ScanDirRaw(dirCluster)
}

// countFATUsage re-derives the same totals Df reports, independently of
// the ownership walk, so Report.FreeClusters+UsedClusters cross-checks
// against Df's own accounting (Testable Property 6).
func (w *walker) countFATUsage() (free, used uint32, err error) {
	return w.v.CountFATUsage()
}
