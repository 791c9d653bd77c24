// Package experiment runs the Buffon's needle experiments: a single run whose
// needles are drawn as a scatter plot, the cumulative estimate over that run,
// and a sweep of independent runs over a range of sample sizes grouped for
// boxplots. Runner ties them to output files, the run store and the charts.
package experiment
