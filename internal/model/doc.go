// Package model defines the core data structures shared by the crawler,
// download scheduler and sync engine.
//
// # Drama
//
// Drama is an immutable catalog snapshot with computed local paths:
//
//	d := model.NewDrama("41000101", "Title", 78, coverURL, pathConfig)
//	fmt.Println(d.Path) // where this drama's files are stored
//
// # Episode
//
// Episode is one downloadable unit of a drama:
//
//	e := model.NewEpisode(d, "9100041", 0, "Episode 1", videoURL)
//	fmt.Println(e.Path) // full path where the media file will be saved
//
// Folder and file names are derived deterministically ({id}_{sanitizedTitle}
// folders, {chapterId}_{index}.mp4 files) so repeated runs can locate files
// written by earlier runs.
package model
