// Package clustering summarises songs that already carry an upstream cluster label:
// per-cluster feature profiles, mood names, and cohesion of the labelling.
package clustering

import (
	"fmt"

	"github.com/justestif/go-music-cluster-explorer/internal/dataset"
	"github.com/justestif/go-music-cluster-explorer/internal/stats"
)

// moodFeatures are the features needed to name a cluster's mood.
var moodFeatures = []string{"energy", "valence", "acousticness"}

// Profile describes one cluster by its size and feature means.
type Profile struct {
	ID    int
	Size  int
	Means map[string]float64 // Feature name -> mean over the cluster's songs
}

// Mood returns the descriptive mood category for the profile.
func (p Profile) Mood() MoodCategory {
	return GetMoodCategory(p.Means)
}

// Profiles computes a profile per cluster over the given feature columns,
// ordered by cluster id.
func Profiles(ds *dataset.Dataset, features []string) ([]Profile, error) {
	labels, err := ds.Clusters()
	if err != nil {
		return nil, err
	}
	columns, err := ds.Features(features)
	if err != nil {
		return nil, err
	}

	ids, means, err := stats.GroupMeans(labels, columns)
	if err != nil {
		return nil, fmt.Errorf("computing cluster means: %w", err)
	}
	_, counts := stats.Counts(labels)

	profiles := make([]Profile, len(ids))
	for k, id := range ids {
		m := make(map[string]float64, len(features))
		for j, name := range features {
			m[name] = means[k][j]
		}
		profiles[k] = Profile{ID: id, Size: counts[k], Means: m}
	}
	return profiles, nil
}

// MoodProfiles computes profiles over the features used for mood naming.
func MoodProfiles(ds *dataset.Dataset) ([]Profile, error) {
	return Profiles(ds, moodFeatures)
}
