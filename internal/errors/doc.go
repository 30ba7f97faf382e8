// Package errors provides coded, actionable errors for the store runtime.
//
// Every misuse the runtime can detect (a store hook read outside a component
// render, a nil setup function, a runaway re-render loop, an invalid
// configuration file) is reported as an *Error carrying a stable code such as
// "E001". The code maps to a registered message, a longer explanation and a
// documentation URL.
//
// Runtime misuse panics with the *Error value so callers can recover it with
// errors.As:
//
//	defer func() {
//	    if r := recover(); r != nil {
//	        if err, ok := r.(*errors.Error); ok && err.Code == "E001" {
//	            // hook used outside render
//	        }
//	    }
//	}()
//
// Format renders the error for a terminal:
//
//	ERROR E001: Store hook used outside component render
//
//	  Store hooks read the component's owner and re-render trigger, so they
//	  must run while a component is rendering.
//
//	  Hint: call hook.Use() inside the component's render function
//
//	  Learn more: https://vango.dev/docs/store/errors/E001
package errors
