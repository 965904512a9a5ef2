// Package engine computes which commits still need to be ported between branches.
//
// Discovery runs in three stages:
//   - list the cherry-pick-aware right-only difference between target and source
//   - drop commits matching the mfc.exclude files and the local skip list
//   - drop commits whose hash is already mentioned in target's history
//
// The engine only queries the repository. The one file it writes is the
// merged cache in the git directory, which records already-merged verdicts
// against the target tip they were computed for.
package engine
