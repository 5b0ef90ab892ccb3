package platform

import (
	"strings"
	"unicode"
)

// PostgreSQL reserved words that need quoting
// Based on https://www.postgresql.org/docs/current/sql-keywords-appendix.html
var postgresReservedWords = wordSet(`
	all analyse analyze and any array as asc asymmetric authorization
	between bigint binary boolean both case cast char character check
	collate collation column concurrently constraint create cross
	current_catalog current_date current_role current_schema current_time
	current_timestamp current_user default deferrable delete desc distinct
	do else end except exists false fetch filter for foreign freeze from
	full grant group having ilike in initially inner insert intersect into
	is isnull join lateral leading left like limit localtime
	localtimestamp natural not notnull null offset on only or order outer
	overlaps placing primary references returning right select
	session_user similar some symmetric system_user table tablesample then
	to trailing true union unique update user using variadic verbose when
	where window with
`)

// MySQL reserved words that need quoting
// Based on https://dev.mysql.com/doc/refman/8.0/en/keywords.html
var mysqlReservedWords = wordSet(`
	accessible add all alter analyze and as asc asensitive before between
	bigint binary blob both by call cascade case change char character check
	collate column condition constraint continue convert create cross cube
	current_date current_time current_timestamp current_user cursor database
	databases day_hour day_microsecond day_minute day_second dec decimal
	declare default delayed delete desc describe deterministic distinct
	distinctrow div double drop dual each else elseif enclosed escaped
	except exists exit explain false fetch float for force foreign from
	fulltext function generated get grant group grouping groups having
	high_priority hour_microsecond hour_minute hour_second if ignore in
	index infile inner inout insensitive insert int integer intersect
	interval into is iterate join json_table key keys kill lag lead leading
	leave left like limit linear lines load localtime localtimestamp lock
	long longblob longtext loop low_priority match mediumblob mediumint
	mediumtext minute_microsecond minute_second mod modifies natural not
	null numeric of on optimize option optionally or order out outer
	outfile over partition precision primary procedure purge range rank
	read reads real recursive references regexp release rename repeat
	replace require resignal restrict return revoke right rlike row rows
	schema schemas select sensitive separator set show signal smallint
	spatial specific sql sqlexception sqlstate sqlwarning ssl starting
	stored straight_join system table terminated then tinyblob tinyint
	tinytext to trailing trigger true undo union unique unlock unsigned
	update usage use using utc_date utc_time utc_timestamp values varbinary
	varchar varcharacter varying virtual when where while window with
	write xor year_month zerofill
`)

func wordSet(words string) map[string]bool {
	set := map[string]bool{}
	for _, word := range strings.Fields(words) {
		set[word] = true
	}
	return set
}

// needsQuoting checks if an identifier needs to be quoted. foldsCase is set
// for dialects that fold unquoted identifiers to lowercase.
func needsQuoting(identifier string, reserved map[string]bool, foldsCase bool) bool {
	if identifier == "" {
		return false
	}

	if reserved[strings.ToLower(identifier)] {
		return true
	}

	for i, r := range identifier {
		if foldsCase && unicode.IsUpper(r) {
			return true
		}
		if i == 0 && !unicode.IsLetter(r) && r != '_' {
			return true
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return true
		}
	}

	return false
}

func quoteColumns(p Platform, names []string) string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = p.QuoteIdentifier(name)
	}
	return strings.Join(quoted, ", ")
}
