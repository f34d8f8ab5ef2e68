// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// MoviesHeader is the TMDB column layout used by the fixtures.
const MoviesHeader = "budget,genres,id,overview,production_companies,release_date,revenue,runtime,title,vote_average,vote_count"

// MoviesRows covers the cell shapes found in the real dataset: JSON lists,
// Python-style single-quoted lists, quotes inside names, blanks and garbage.
var MoviesRows = []string{
	`237000000,"[{""id"": 28, ""name"": ""Action""}, {""id"": 12, ""name"": ""Adventure""}, {""id"": 14, ""name"": ""Fantasy""}]",19995,"In the 22nd century, a paraplegic Marine...","[{""name"": ""Ingenious Film Partners"", ""id"": 289}, {""name"": ""Twentieth Century Fox"", ""id"": 306}]",2009-12-10,2787965087,162,Avatar,7.2,11800`,
	`200000000,"[{'id': 18, 'name': 'Drama'}, {'id': 10749, 'name': 'Romance'}]",597,"84 years later, a woman recalls the voyage.","[{'name': 'Paramount Pictures', 'id': 4}, {'name': 'Twentieth Century Fox', 'id': 306}]",1997-11-18,1845034188,194,Titanic,7.5,7562`,
	`103000000,"[{""id"": 28, ""name"": ""Action""}, {""id"": 18, ""name"": ""Drama""}]",98,"A general becomes a slave.","[{""name"": ""DreamWorks SKG"", ""id"": 7}, {""name"": ""Universal Pictures"", ""id"": 33}]",2000-05-01,457640427,155,Gladiator,7.9,8000`,
	`9000000,"[{'id': 9648, 'name': 'Mystery'}, {'id': 53, 'name': 'Thriller'}]",77,"A man with short-term memory loss.","[{'name': ""Director's Cut Co"", 'id': 1}]",2000-10-11,39723096,113,Memento,8.1,9000`,
	`,not-json,1,"No date, no money.",,,abc,,Lost Reel,6.0,3`,
	`500,"[{""id"": 18, ""name"": ""Drama""}]",2,Quiet.,[],2000-03-03,1000,90,Quiet Film,,0`,
}

// MoviesCSV returns the fixture as CSV text.
func MoviesCSV() string {
	return MoviesHeader + "\n" + strings.Join(MoviesRows, "\n") + "\n"
}

// WriteFile writes content to name inside dir and returns the full path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

// WriteMoviesCSV writes the movie fixture into dir.
func WriteMoviesCSV(t testing.TB, dir string) string {
	t.Helper()
	return WriteFile(t, dir, "movies.csv", MoviesCSV())
}
