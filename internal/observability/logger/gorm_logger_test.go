package logger

import "testing"

func TestOperationFromSQL(t *testing.T) {
	cases := []struct {
		sql  string
		want string
	}{
		{sql: "SELECT * FROM commissions", want: "SELECT"},
		{sql: "  insert into commissions (id) values (1)", want: "INSERT"},
		{sql: "WITH x AS (SELECT 1) UPDATE commissions SET a=1", want: "SELECT"},
		{sql: "(DELETE FROM commission_payouts)", want: "DELETE"},
		{sql: "", want: "UNKNOWN"},
	}
	for _, tc := range cases {
		if got := operationFromSQL(tc.sql); got != tc.want {
			t.Fatalf("operationFromSQL(%q) = %s, want %s", tc.sql, got, tc.want)
		}
	}
}
