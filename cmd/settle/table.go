package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/susu3304/studybot/internal/settlement"
)

func writeAttendanceTable(w io.Writer, r settlement.AttendanceReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "PARTICIPANT\tATTENDED\tMISSED\tRATE\tPENALTY\tREFUND\t")
	for _, row := range r.Results {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d%%\t%d\t%d\t\n",
			row.Participant, row.AttendedSessions, row.MissedSessions, row.Rate, row.Penalty, row.Refund)
	}
	fmt.Fprintf(tw, "TOTAL\t\t\t\t%d\t%d\t\n", r.TotalPenalty, r.TotalRefund)
	return tw.Flush()
}

func writeStandingsTable(w io.Writer, r settlement.MissionReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "RANK\tPARTICIPANT\tBASE\tMISSION\tTOTAL\tREWARD\t")
	for _, st := range r.Standings {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t\n",
			st.Rank, st.Participant, st.BaseScore, st.MissionScore, st.TotalScore, st.Reward)
	}
	return tw.Flush()
}
