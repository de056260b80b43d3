package restore

import "testing"

func TestCreateDatabaseStatement(t *testing.T) {
	cases := []struct {
		name, charset, want string
	}{
		{"wikidb", "utf8", "CREATE DATABASE IF NOT EXISTS `wikidb` CHARACTER SET utf8"},
		{"wikidb", "binary", "CREATE DATABASE IF NOT EXISTS `wikidb`"},
		{"wikidb", "", "CREATE DATABASE IF NOT EXISTS `wikidb`"},
		{"we`ird", "utf8; DROP", "CREATE DATABASE IF NOT EXISTS `we``ird`"},
	}
	for _, tc := range cases {
		if got := CreateDatabaseStatement(tc.name, tc.charset); got != tc.want {
			t.Errorf("CreateDatabaseStatement(%q, %q) = %q, want %q", tc.name, tc.charset, got, tc.want)
		}
	}
}

func TestGrantStatement(t *testing.T) {
	got := GrantStatement("wikidb", "wikiuser", "%", "pa'ss")
	want := "CREATE USER IF NOT EXISTS 'wikiuser'@'%' IDENTIFIED BY 'pa\\'ss'; GRANT ALL PRIVILEGES ON `wikidb`.* TO 'wikiuser'@'%'"
	if got != want {
		t.Fatalf("GrantStatement = %q\nwant %q", got, want)
	}
}

func TestEscapeLike(t *testing.T) {
	if got := quoteString(escapeLike("wiki_db")); got != `'wiki\\_db'` {
		t.Fatalf("got %q", got)
	}
}
