/*
go-lanefind finds and tracks the lane a vehicle is driving in from dash
camera video.  Each frame is thresholded into a binary mask of likely lane
paint, corrected for lens distortion and warped to a top down view, where
the left and right lane lines are fitted with second degree polynomials.
From the fit the radius of curvature of each line and the offset of the
vehicle from the lane centre are derived, and the lane area is blended back
onto the frame.

The tracking engine is in the tracker subdirectory and has no dependency on
OpenCV, the preprocess and render subdirectories hold the GoCV frame stages
and this package ties them into a video pipeline.  Per frame telemetry can be
recorded with the record subdirectory and charted with report.

See example code and usage in the example subdirectory.
*/
package lanefind
