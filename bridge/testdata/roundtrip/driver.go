package counter

/*
#include <stdint.h>

uint64_t run_counter(void);
void* new_listener(void);
extern int listener_frees;
extern uint64_t listener_seen;
*/
import "C"

// runCounter drives a Counter from the foreign side and returns its total.
func runCounter() uint64 {
	return uint64(C.run_counter())
}

func newListener() *Listener {
	return __bridge__Listener__wrap(C.new_listener())
}

func listenerFrees() int {
	return int(C.listener_frees)
}

func listenerSeen() uint64 {
	return uint64(C.listener_seen)
}
